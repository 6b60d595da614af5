package report

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/offsetlab/layoutkit/xmltree"
)

// EvalFlagArray evaluates a flag-array element bound to a bitfield and
// emits an ordinal-indexed table of named flag combinations. An unknown
// bitfield is fatal to the whole array; bad flag tokens only exclude
// themselves from their combination.
func (ctx *Context) EvalFlagArray(w *Writer, el *xmltree.Element) bool {
	name := el.Attr("bitfield")
	bf, err := ctx.DB.Bitfield(name)
	if err != nil {
		Logger().Error("unknown bitfield",
			zap.String("bitfield", name),
			zap.Error(err))
		return false
	}

	type combination struct {
		name  string
		value uint64
	}

	ok := true
	var values []combination
	for _, child := range el.Children {
		if child.Name != "flag" {
			Logger().Error("invalid tag name in flag-array",
				zap.String("tag", child.Name),
				zap.String("bitfield", name))
			ok = false
			continue
		}

		var value uint64
		for _, token := range strings.Split(child.Attr("flags"), "|") {
			flag := bf.Find(token)
			if flag == nil {
				Logger().Error("unknown flag value",
					zap.String("flag", token),
					zap.String("bitfield", name))
				ok = false
				continue
			}
			if flag.Count != 1 {
				Logger().Error("not a single bit flag",
					zap.String("flag", token),
					zap.Uint32("width", flag.Count))
				ok = false
				continue
			}
			value |= 1 << flag.Offset
		}
		values = append(values, combination{name: child.Attr("name"), value: value})
	}

	w.Raw("size", strconv.Itoa(len(values)))
	for i, v := range values {
		w.Flag(i+1, v.name, v.value)
	}
	return ok
}

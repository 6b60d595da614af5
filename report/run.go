// Package report evaluates a layout descriptor script against a type
// database, an ABI, and a computed memory layout, and streams the resolved
// facts as an INI-like report.
//
// Evaluation is best-effort: a failed directive is logged and omitted from
// the report, its siblings still run, and the failure is reflected in the
// boolean returned to the caller. Only the conditions in WriteInfo and
// NewContext are fatal.
package report

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/offsetlab/layoutkit/abi"
	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/layout"
	"github.com/offsetlab/layoutkit/typedb"
	"github.com/offsetlab/layoutkit/xmltree"
)

// Context is the read-only resolution state for one run.
type Context struct {
	DB      *typedb.DB
	Version *typedb.VersionInfo
	ABI     *abi.ABI
	Layout  *layout.Builder
}

// NewContext resolves the named version and its ABI and prepares a layout
// builder. Unknown versions and unrecognized targets are fatal.
func NewContext(db *typedb.DB, versionName string) (*Context, error) {
	version, err := db.VersionByName(versionName)
	if err != nil {
		return nil, err
	}
	a, err := abi.FromVersionName(versionName)
	if err != nil {
		return nil, err
	}
	return &Context{
		DB:      db,
		Version: version,
		ABI:     a,
		Layout:  layout.NewBuilder(db, a),
	}, nil
}

// WriteInfo emits the [info] preamble: the 4-byte version checksum, the
// version name, and the completeness marker. A version id shorter than
// 4 bytes is fatal.
func (ctx *Context) WriteInfo(w *Writer) error {
	w.Header("info")
	id := ctx.Version.ID
	if len(id) < 4 {
		return errors.New(errors.PhaseReport, errors.KindInvalidData).
			Detail("invalid version id, size is too small: %d", len(id)).
			Build()
	}
	w.Raw("checksum", fmt.Sprintf("0x%02x%02x%02x%02x", id[0], id[1], id[2], id[3]))
	w.Raw("version_name", ctx.Version.Name)
	w.Raw("complete", "true")
	w.Blank()
	return nil
}

// Run dispatches every top-level script element to the section or
// flag-array evaluator and reports whether the whole script resolved
// without error.
func (ctx *Context) Run(w *Writer, root *xmltree.Element) bool {
	ok := true
	for _, el := range root.Children {
		w.Header(el.Attr("name"))
		switch el.Name {
		case "section":
			if !ctx.EvalSection(w, el) {
				ok = false
			}
		case "flag-array":
			if !ctx.EvalFlagArray(w, el) {
				ok = false
			}
		default:
			Logger().Error("ignoring unknown tag name",
				zap.String("tag", el.Name))
			ok = false
			continue
		}
		w.Blank()
	}
	return ok
}

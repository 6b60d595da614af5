// Package sympath parses dotted symbol paths used to address compound types,
// members, and global objects.
//
// A path is one or more segments separated by dots. Each segment is an
// identifier, optionally followed by a decimal index in square brackets:
//
//	world.units.all[3].id
package sympath

import (
	"strconv"
	"strings"

	"github.com/offsetlab/layoutkit/errors"
)

// NoIndex marks a segment without a subscript.
const NoIndex = -1

// Segment is one step of a path.
type Segment struct {
	Name  string
	Index int
}

// Indexed reports whether the segment carries a subscript.
func (s Segment) Indexed() bool {
	return s.Index != NoIndex
}

func (s Segment) String() string {
	if s.Indexed() {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path is a parsed symbol path. It is never empty.
type Path []Segment

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Parse turns a dotted name into a Path. The empty string, empty segments,
// non-identifier characters, and malformed subscripts all fail with a
// malformed_path error carrying the original input.
func Parse(input string) (Path, error) {
	if input == "" {
		return nil, errors.MalformedPath(errors.PhaseResolve, input)
	}

	parts := strings.Split(input, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		seg, ok := parseSegment(part)
		if !ok {
			return nil, errors.MalformedPath(errors.PhaseResolve, input)
		}
		path = append(path, seg)
	}
	return path, nil
}

func parseSegment(s string) (Segment, bool) {
	name := s
	index := NoIndex

	if i := strings.IndexByte(s, '['); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return Segment{}, false
		}
		name = s[:i]
		n, err := strconv.Atoi(s[i+1 : len(s)-1])
		if err != nil || n < 0 {
			return Segment{}, false
		}
		index = n
	}

	if !isIdent(name) {
		return Segment{}, false
	}
	return Segment{Name: name, Index: index}, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Package xmltree parses XML documents into a plain element tree.
//
// The tree keeps element names, attributes, and child order, and drops
// comments, processing instructions, and character data. Both the database
// loader and the descriptor evaluator consume this representation; neither
// cares how the document was serialized.
package xmltree

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"

	"github.com/offsetlab/layoutkit/errors"
)

// Element is a named node with string attributes and ordered children.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
}

// Attr returns the named attribute, or "" if absent.
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// HasAttr reports whether the attribute is present, even if empty.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

// AttrInt parses the named attribute as an integer, accepting decimal and
// 0x-prefixed hexadecimal. Missing or unparsable attributes return def.
func (e *Element) AttrInt(name string, def int64) int64 {
	s, ok := e.Attrs[name]
	if !ok {
		return def
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return def
	}
	return v
}

// Parse reads one XML document and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ParseFailed("document", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Name:  t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.ParseFailed("document", errors.InvalidData(errors.PhaseLoad, nil, "multiple root elements"))
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, errors.ParseFailed("document", errors.InvalidData(errors.PhaseLoad, nil, "no root element"))
	}
	return root, nil
}

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	return root, nil
}

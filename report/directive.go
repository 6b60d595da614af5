package report

import (
	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/xmltree"
)

// DirectiveKind is the closed set of section directives.
type DirectiveKind uint8

const (
	DirOffset DirectiveKind = iota
	DirSize
	DirVMethod
	DirValue
	DirGlobal
	DirVTable
)

var directiveNames = [...]string{
	DirOffset:  "offset",
	DirSize:    "size",
	DirVMethod: "vmethod",
	DirValue:   "value",
	DirGlobal:  "global",
	DirVTable:  "vtable",
}

func (k DirectiveKind) String() string {
	if int(k) < len(directiveNames) {
		return directiveNames[k]
	}
	return "unknown"
}

// Directive is one validated section child. Attributes are read exactly
// once, here; evaluation never goes back to the raw element.
type Directive struct {
	Kind    DirectiveKind
	Name    string // report key
	Type    string // compound type reference, "" if absent
	Member  string // offset: member path
	Method  string // vmethod: method name
	Enum    string // value: enum name
	Value   string // value: literal or enum value name
	Object  string // global: object path
	HasEnum bool
}

// parseDirective validates one section child into a Directive. Unknown
// element names fail with an invalid_tag error.
func parseDirective(el *xmltree.Element) (Directive, error) {
	d := Directive{
		Name:   el.Attr("name"),
		Type:   el.Attr("type"),
		Member: el.Attr("member"),
		Method: el.Attr("method"),
		Enum:   el.Attr("enum"),
		Value:  el.Attr("value"),
		Object: el.Attr("object"),
	}
	d.HasEnum = el.HasAttr("enum")

	switch el.Name {
	case "offset":
		d.Kind = DirOffset
	case "size":
		d.Kind = DirSize
	case "vmethod":
		d.Kind = DirVMethod
	case "value":
		d.Kind = DirValue
	case "global":
		d.Kind = DirGlobal
	case "vtable":
		d.Kind = DirVTable
	default:
		return Directive{}, errors.InvalidTag(errors.PhaseScript, el.Name)
	}
	return d, nil
}

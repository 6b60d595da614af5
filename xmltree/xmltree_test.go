package xmltree

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	doc := `<?xml version="1.0"?>
<!-- header comment -->
<layout name="root">
	<section name="units">
		<offset name="unit_id" type="unit" member="id"/>
		<!-- inline comment -->
		<size name="unit_size" type="unit"/>
	</section>
	<flag-array name="flags" bitfield="unit_flags"/>
</layout>`

	root, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if root.Name != "layout" {
		t.Errorf("root name: got %q", root.Name)
	}
	if root.Attr("name") != "root" {
		t.Errorf("root attr: got %q", root.Attr("name"))
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children: got %d, want 2", len(root.Children))
	}

	section := root.Children[0]
	if section.Name != "section" || len(section.Children) != 2 {
		t.Fatalf("section: got %q with %d children", section.Name, len(section.Children))
	}
	if section.Children[0].Name != "offset" || section.Children[1].Name != "size" {
		t.Errorf("child order: got %q, %q", section.Children[0].Name, section.Children[1].Name)
	}

	off := section.Children[0]
	if off.Attr("type") != "unit" || off.Attr("member") != "id" {
		t.Errorf("offset attrs: got %v", off.Attrs)
	}
	if off.HasAttr("enum") {
		t.Error("unexpected enum attr")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unclosed", "<layout><section></layout>"},
		{"garbage", "key=value"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAttrInt(t *testing.T) {
	root, err := Parse(strings.NewReader(`<flag offset="3" addr="0x1a" bad="zzz"/>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := root.AttrInt("offset", -1); got != 3 {
		t.Errorf("decimal: got %d", got)
	}
	if got := root.AttrInt("addr", -1); got != 0x1a {
		t.Errorf("hex: got %d", got)
	}
	if got := root.AttrInt("bad", -1); got != -1 {
		t.Errorf("unparsable: got %d", got)
	}
	if got := root.AttrInt("missing", 7); got != 7 {
		t.Errorf("missing: got %d", got)
	}
}

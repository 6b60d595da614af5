package verify

import (
	"strings"
	"testing"

	"github.com/offsetlab/layoutkit/abi"
	"github.com/offsetlab/layoutkit/layout"
	"github.com/offsetlab/layoutkit/sympath"
	"github.com/offsetlab/layoutkit/typedb"
)

const testDefs = `
<data-definition>
	<compound name="coord">
		<field name="x" type="int16_t"/>
		<field name="y" type="int16_t"/>
		<field name="z" type="int16_t"/>
	</compound>
</data-definition>`

func computedCoord(t *testing.T) layout.Info {
	t.Helper()
	db := typedb.New()
	if err := db.Read(strings.NewReader(testDefs)); err != nil {
		t.Fatalf("definitions: %v", err)
	}
	a, err := abi.FromVersionName("v1 linux64")
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	p, _ := sympath.Parse("coord")
	c, err := db.Compound(p)
	if err != nil {
		t.Fatalf("compound: %v", err)
	}
	info, err := layout.NewBuilder(db, a).Compound(c)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return info
}

func TestCompareClean(t *testing.T) {
	want := computedCoord(t)
	got := structInfo{size: 6, offsets: map[string]uint64{"x": 0, "y": 2, "z": 4}}

	if m := compare("coord", want, got); len(m) != 0 {
		t.Errorf("unexpected mismatches: %v", m)
	}
}

func TestCompareSizeMismatch(t *testing.T) {
	want := computedCoord(t)
	got := structInfo{size: 8, offsets: map[string]uint64{"x": 0, "y": 2, "z": 4}}

	m := compare("coord", want, got)
	if len(m) != 1 {
		t.Fatalf("got %d mismatches, want 1", len(m))
	}
	if m[0].Member != "" || m[0].Want != 6 || m[0].Got != 8 {
		t.Errorf("size mismatch: %+v", m[0])
	}
}

func TestCompareOffsetMismatch(t *testing.T) {
	want := computedCoord(t)
	got := structInfo{size: 6, offsets: map[string]uint64{"x": 0, "y": 4, "z": 2}}

	m := compare("coord", want, got)
	if len(m) != 2 {
		t.Fatalf("got %d mismatches, want 2: %v", len(m), m)
	}
	// sorted member order: y before z
	if m[0].Member != "y" || m[0].Want != 2 || m[0].Got != 4 {
		t.Errorf("first mismatch: %+v", m[0])
	}
	if m[1].Member != "z" || m[1].Want != 4 || m[1].Got != 2 {
		t.Errorf("second mismatch: %+v", m[1])
	}
}

func TestCompareIgnoresUnrecordedMembers(t *testing.T) {
	want := computedCoord(t)
	// DWARF stripped the z member entirely
	got := structInfo{size: 6, offsets: map[string]uint64{"x": 0, "y": 2}}

	if m := compare("coord", want, got); len(m) != 0 {
		t.Errorf("unexpected mismatches: %v", m)
	}
}

// Package verify cross-checks computed layouts against a debug build.
//
// Given an ELF binary with DWARF info, it extracts struct sizes and member
// offsets and compares them with what the layout engine derives from the
// database. It exists to catch database drift when a new build ships.
package verify

import (
	"debug/dwarf"
	"debug/elf"
	"sort"

	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/layout"
	"github.com/offsetlab/layoutkit/sympath"
	"github.com/offsetlab/layoutkit/typedb"
)

// Mismatch is one disagreement between the database and the debug build.
type Mismatch struct {
	Compound string
	Member   string // "" for whole-type size mismatches
	Want     uint64 // computed from the database
	Got      uint64 // recorded in DWARF
}

// structInfo is the DWARF-reported shape of one struct.
type structInfo struct {
	size    uint64
	offsets map[string]uint64
}

// File compares the named compounds (all top-level compounds when names is
// empty) against the DWARF info of the ELF binary at path.
func File(db *typedb.DB, b *layout.Builder, path string, names []string) ([]Mismatch, []string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.PhaseVerify, errors.KindInvalidData, err, "open elf")
	}
	defer f.Close()

	data, err := f.DWARF()
	if err != nil {
		return nil, nil, errors.Wrap(errors.PhaseVerify, errors.KindInvalidData, err, "no dwarf info")
	}

	if len(names) == 0 {
		names = db.CompoundNames()
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	seen, err := readStructs(data, wanted)
	if err != nil {
		return nil, nil, err
	}

	var mismatches []Mismatch
	var missing []string
	sort.Strings(names)
	for _, name := range names {
		got, ok := seen[name]
		if !ok {
			missing = append(missing, name)
			continue
		}

		path, err := sympath.Parse(name)
		if err != nil {
			return nil, nil, err
		}
		c, err := db.Compound(path)
		if err != nil {
			return nil, nil, err
		}
		want, err := b.Compound(c)
		if err != nil {
			return nil, nil, err
		}
		mismatches = append(mismatches, compare(name, want, got)...)
	}
	return mismatches, missing, nil
}

// readStructs scans the DWARF entry stream for the wanted struct types.
func readStructs(data *dwarf.Data, wanted map[string]bool) (map[string]structInfo, error) {
	out := make(map[string]structInfo)
	reader := data.Reader()
	for {
		entry, err := reader.Next()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseVerify, errors.KindInvalidData, err, "read dwarf")
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagStructType && entry.Tag != dwarf.TagClassType {
			continue
		}

		name, _ := entry.Val(dwarf.AttrName).(string)
		if !wanted[name] {
			if entry.Children {
				reader.SkipChildren()
			}
			continue
		}

		info := structInfo{offsets: make(map[string]uint64)}
		if size, ok := entry.Val(dwarf.AttrByteSize).(int64); ok {
			info.size = uint64(size)
		}
		if entry.Children {
			if err := readMembers(reader, info.offsets); err != nil {
				return nil, err
			}
		}
		out[name] = info
	}
	return out, nil
}

func readMembers(reader *dwarf.Reader, offsets map[string]uint64) error {
	for {
		entry, err := reader.Next()
		if err != nil {
			return errors.Wrap(errors.PhaseVerify, errors.KindInvalidData, err, "read dwarf members")
		}
		if entry == nil || entry.Tag == 0 {
			return nil
		}
		if entry.Tag != dwarf.TagMember {
			if entry.Children {
				reader.SkipChildren()
			}
			continue
		}
		name, _ := entry.Val(dwarf.AttrName).(string)
		if name == "" {
			continue
		}
		if off, ok := entry.Val(dwarf.AttrDataMemberLoc).(int64); ok {
			offsets[name] = uint64(off)
		}
	}
}

// compare reports every disagreement between a computed layout and the
// DWARF-reported shape. Members absent from DWARF are ignored; the debug
// build is the authority only for what it records.
func compare(name string, want layout.Info, got structInfo) []Mismatch {
	var out []Mismatch
	if uint64(want.Size) != got.size {
		out = append(out, Mismatch{Compound: name, Want: uint64(want.Size), Got: got.size})
	}

	members := make([]string, 0, len(want.Offsets))
	for m := range want.Offsets {
		members = append(members, m)
	}
	sort.Strings(members)
	for _, m := range members {
		gotOff, ok := got.offsets[m]
		if !ok {
			continue
		}
		if uint64(want.Offsets[m]) != gotOff {
			out = append(out, Mismatch{
				Compound: name,
				Member:   m,
				Want:     uint64(want.Offsets[m]),
				Got:      gotOff,
			})
		}
	}
	return out
}

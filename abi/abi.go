// Package abi describes the binary conventions of a target build: pointer
// width, scalar alignment, and the vtable pointer convention.
//
// An ABI is selected from the version name. Version names carry a target
// token such as "win64" or "linux32", e.g. "v0.47.05 linux64".
package abi

import (
	"strings"

	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/typedb"
)

// Info is the size and alignment of one type.
type Info struct {
	Size  uint32
	Align uint32
}

// ABI holds the layout conventions of one target.
type ABI struct {
	Name        string
	PointerSize uint32
	// MaxAlign caps scalar alignment; 32-bit targets align 8-byte
	// scalars to 4 bytes.
	MaxAlign uint32
	// StringSize is the in-memory size of the standard string type.
	StringSize uint32
	// ReuseTailPadding marks targets whose compiler places derived
	// members inside the base's tail padding (the Itanium C++ rule,
	// used by g++ and clang). MSVC never reuses tail padding.
	ReuseTailPadding bool
}

var targets = map[string]*ABI{
	"win32":   {Name: "win32", PointerSize: 4, MaxAlign: 4, StringSize: 24},
	"win64":   {Name: "win64", PointerSize: 8, MaxAlign: 8, StringSize: 32},
	"linux32": {Name: "linux32", PointerSize: 4, MaxAlign: 4, StringSize: 24, ReuseTailPadding: true},
	"linux64": {Name: "linux64", PointerSize: 8, MaxAlign: 8, StringSize: 32, ReuseTailPadding: true},
	"osx32":   {Name: "osx32", PointerSize: 4, MaxAlign: 4, StringSize: 24, ReuseTailPadding: true},
	"osx64":   {Name: "osx64", PointerSize: 8, MaxAlign: 8, StringSize: 32, ReuseTailPadding: true},
}

// FromVersionName selects the ABI for a version by scanning its name for a
// target token.
func FromVersionName(version string) (*ABI, error) {
	for _, field := range strings.Fields(version) {
		if abi, ok := targets[strings.ToLower(field)]; ok {
			return abi, nil
		}
	}
	return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
		Detail("no known target in version name %q", version).
		Build()
}

// Primitive returns the size and alignment of a primitive kind under this
// ABI. The second return is false for KindNone.
func (a *ABI) Primitive(k typedb.Kind) (Info, bool) {
	switch k {
	case typedb.KindPointer:
		return Info{Size: a.PointerSize, Align: a.align(a.PointerSize)}, true
	case typedb.KindStdString:
		return Info{Size: a.StringSize, Align: a.align(a.PointerSize)}, true
	case typedb.KindNone:
		return Info{}, false
	default:
		size := k.FixedSize()
		if size == 0 {
			return Info{}, false
		}
		return Info{Size: size, Align: a.align(size)}, true
	}
}

func (a *ABI) align(size uint32) uint32 {
	if size > a.MaxAlign {
		return a.MaxAlign
	}
	return size
}

// AlignTo rounds offset up to the next multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

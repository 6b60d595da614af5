// Package typedb holds the externally maintained description of a target
// binary: its compound types, enums, bitfields, global objects, and the
// per-version symbol addresses.
//
// The database is read-only after loading. All lookups return structured
// errors instead of panicking so callers can aggregate failures.
package typedb

import (
	"sort"

	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/sympath"
)

// Member is one named field of a compound.
type Member struct {
	Name  string
	Type  string // primitive kind name or user-defined type name
	Count int    // >1 for inline arrays
}

// Compound is a struct/class-like record.
type Compound struct {
	Name     string
	Parent   string // parent compound name, "" for roots
	Virtual  bool   // carries a vtable pointer
	Members  []Member
	VMethods []string
	Children map[string]*Compound // nested compound definitions
}

// Enum is a named set of integer constants.
type Enum struct {
	Name   string
	Base   Kind
	Values map[string]int64
}

// Flag is one entry of a bitfield: Count bits starting at bit Offset.
type Flag struct {
	Name   string
	Offset uint32
	Count  uint32
}

// Bitfield is a named, ordered set of bit flags.
type Bitfield struct {
	Name  string
	Base  Kind
	Flags []Flag
}

// Find returns the named flag, or nil.
func (b *Bitfield) Find(name string) *Flag {
	for i := range b.Flags {
		if b.Flags[i].Name == name {
			return &b.Flags[i]
		}
	}
	return nil
}

// GlobalObject declares a named global instance of a compound type.
type GlobalObject struct {
	Name string
	Type string
}

// VersionInfo identifies one build of the target binary and carries its
// version-specific symbol addresses.
type VersionInfo struct {
	Name            string
	ID              []byte // checksum prefix identifying the build
	GlobalAddresses map[string]uint64
	VTableAddresses map[string]uint64
}

// DB is the loaded type database.
type DB struct {
	compounds map[string]*Compound
	enums     map[string]*Enum
	bitfields map[string]*Bitfield
	globals   map[string]*GlobalObject
	versions  []*VersionInfo
}

// New returns an empty database.
func New() *DB {
	return &DB{
		compounds: make(map[string]*Compound),
		enums:     make(map[string]*Enum),
		bitfields: make(map[string]*Bitfield),
		globals:   make(map[string]*GlobalObject),
	}
}

// Compound resolves a possibly nested compound path like "unit.T_job".
// Subscripts are not allowed in type paths.
func (db *DB) Compound(path sympath.Path) (*Compound, error) {
	if len(path) == 0 {
		return nil, errors.MalformedPath(errors.PhaseResolve, "")
	}
	for _, seg := range path {
		if seg.Indexed() {
			return nil, errors.MalformedPath(errors.PhaseResolve, path.String())
		}
	}

	c, ok := db.compounds[path[0].Name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "compound", path[0].Name)
	}
	for _, seg := range path[1:] {
		child, ok := c.Children[seg.Name]
		if !ok {
			return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
				Type(c.Name).
				Detail("nested compound %q not found", seg.Name).
				Build()
		}
		c = child
	}
	return c, nil
}

// CompoundNames returns the top-level compound names in sorted order.
func (db *DB) CompoundNames() []string {
	return sortedKeys(db.compounds)
}

// Enum returns the named enum.
func (db *DB) Enum(name string) (*Enum, error) {
	e, ok := db.enums[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "enum", name)
	}
	return e, nil
}

// Bitfield returns the named bitfield.
func (db *DB) Bitfield(name string) (*Bitfield, error) {
	b, ok := db.bitfields[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "bitfield", name)
	}
	return b, nil
}

// Global returns the named global object declaration.
func (db *DB) Global(name string) (*GlobalObject, error) {
	g, ok := db.globals[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "global", name)
	}
	return g, nil
}

// Versions returns all known versions in load order.
func (db *DB) Versions() []*VersionInfo {
	return db.versions
}

// VersionByName returns the version with the exact name.
func (db *DB) VersionByName(name string) (*VersionInfo, error) {
	for _, v := range db.versions {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseResolve, "version", name)
}

// Parent returns the parent compound of c, or nil for roots. Nested
// compounds may name a parent defined at the top level only.
func (db *DB) Parent(c *Compound) (*Compound, error) {
	if c.Parent == "" {
		return nil, nil
	}
	p, ok := db.compounds[c.Parent]
	if !ok {
		return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Type(c.Name).
			Detail("parent compound %q not found", c.Parent).
			Build()
	}
	return p, nil
}

// MethodIndex returns the vtable slot of the named virtual method, counting
// inherited slots first, or -1 when the method is unknown. A compound whose
// parent cannot be resolved fails instead of being treated as a root.
func (db *DB) MethodIndex(c *Compound, method string) (int, error) {
	base := 0
	p, err := db.Parent(c)
	if err != nil {
		return -1, err
	}
	if p != nil {
		idx, err := db.MethodIndex(p, method)
		if err != nil {
			return -1, err
		}
		if idx >= 0 {
			return idx, nil
		}
		base, err = db.methodCount(p)
		if err != nil {
			return -1, err
		}
	}
	for i, name := range c.VMethods {
		if name == method {
			return base + i, nil
		}
	}
	return -1, nil
}

func (db *DB) methodCount(c *Compound) (int, error) {
	n := len(c.VMethods)
	p, err := db.Parent(c)
	if err != nil {
		return 0, err
	}
	if p != nil {
		pn, err := db.methodCount(p)
		if err != nil {
			return 0, err
		}
		n += pn
	}
	return n, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package layout

import (
	"github.com/offsetlab/layoutkit/abi"
	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/sympath"
	"github.com/offsetlab/layoutkit/typedb"
)

// Info is the computed layout of one compound.
type Info struct {
	Size  uint32
	Align uint32
	// DataSize is the unpadded end offset of the last member. Derived
	// compounds start here when the ABI reuses tail padding.
	DataSize uint32
	// HasVTable reports whether offset 0 holds the vtable pointer.
	HasVTable bool
	// Offsets maps member names to byte offsets, including inherited
	// members.
	Offsets map[string]uint32
}

// member is a resolved member: its element layout and, for compound-typed
// members, the definition to descend into.
type member struct {
	def      *typedb.Member
	elem     abi.Info
	compound *typedb.Compound
}

// Builder computes and caches compound layouts for one (database, ABI) pair.
type Builder struct {
	db       *typedb.DB
	abi      *abi.ABI
	cache    map[*typedb.Compound]Info
	building map[*typedb.Compound]bool
}

// NewBuilder returns a Builder over db under a.
func NewBuilder(db *typedb.DB, a *abi.ABI) *Builder {
	return &Builder{
		db:       db,
		abi:      a,
		cache:    make(map[*typedb.Compound]Info),
		building: make(map[*typedb.Compound]bool),
	}
}

// ABI returns the ABI the builder lays out for.
func (b *Builder) ABI() *abi.ABI {
	return b.abi
}

// Compound returns the layout of c, computing it on first use.
func (b *Builder) Compound(c *typedb.Compound) (Info, error) {
	if info, ok := b.cache[c]; ok {
		return info, nil
	}
	if b.building[c] {
		return Info{}, errors.Cycle(errors.PhaseLayout, c.Name)
	}
	b.building[c] = true
	defer delete(b.building, c)

	info, err := b.compute(c)
	if err != nil {
		return Info{}, err
	}
	b.cache[c] = info
	return info, nil
}

// SizeOf returns the total size of c.
func (b *Builder) SizeOf(c *typedb.Compound) (uint32, error) {
	info, err := b.Compound(c)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (b *Builder) compute(c *typedb.Compound) (Info, error) {
	info := Info{Align: 1, Offsets: make(map[string]uint32)}
	offset := uint32(0)

	parent, err := b.db.Parent(c)
	if err != nil {
		return Info{}, err
	}
	if parent != nil {
		pinfo, err := b.Compound(parent)
		if err != nil {
			return Info{}, err
		}
		if b.abi.ReuseTailPadding {
			offset = pinfo.DataSize
		} else {
			offset = pinfo.Size
		}
		info.Align = pinfo.Align
		info.HasVTable = pinfo.HasVTable
		for name, off := range pinfo.Offsets {
			info.Offsets[name] = off
		}
	}

	if c.Virtual && !info.HasVTable {
		ptr, _ := b.abi.Primitive(typedb.KindPointer)
		offset = abi.AlignTo(offset, ptr.Align) + ptr.Size
		if ptr.Align > info.Align {
			info.Align = ptr.Align
		}
		info.HasVTable = true
	}

	for i := range c.Members {
		m, err := b.resolve(c, &c.Members[i])
		if err != nil {
			return Info{}, err
		}

		offset = abi.AlignTo(offset, m.elem.Align)
		info.Offsets[m.def.Name] = offset
		offset += m.elem.Size * uint32(m.def.Count)

		if m.elem.Align > info.Align {
			info.Align = m.elem.Align
		}
	}

	info.DataSize = offset
	info.Size = abi.AlignTo(offset, info.Align)
	if info.Size == 0 {
		info.Size = 1 // empty records still occupy storage
	}
	return info, nil
}

// resolve maps a member's type name to its element layout.
func (b *Builder) resolve(c *typedb.Compound, def *typedb.Member) (member, error) {
	if kind, ok := typedb.ParseKind(def.Type); ok {
		elem, ok := b.abi.Primitive(kind)
		if !ok {
			return member{}, errors.New(errors.PhaseLayout, errors.KindInvalidData).
				Path(c.Name, def.Name).
				Detail("kind %s has no layout", kind).
				Build()
		}
		return member{def: def, elem: elem}, nil
	}

	if e, err := b.db.Enum(def.Type); err == nil {
		elem, _ := b.abi.Primitive(e.Base)
		return member{def: def, elem: elem}, nil
	}
	if bf, err := b.db.Bitfield(def.Type); err == nil {
		elem, _ := b.abi.Primitive(bf.Base)
		return member{def: def, elem: elem}, nil
	}

	path, err := sympath.Parse(def.Type)
	if err != nil {
		return member{}, errors.New(errors.PhaseLayout, errors.KindMalformedPath).
			Path(c.Name, def.Name).
			Detail("bad type reference %q", def.Type).
			Build()
	}
	nested, err := b.db.Compound(path)
	if err != nil {
		// nested compounds may also be siblings inside the enclosing type
		if local, ok := c.Children[def.Type]; ok {
			nested = local
		} else {
			return member{}, errors.New(errors.PhaseLayout, errors.KindNotFound).
				Path(c.Name, def.Name).
				Type(def.Type).
				Detail("unknown member type").
				Cause(err).
				Build()
		}
	}

	elemInfo, err := b.Compound(nested)
	if err != nil {
		return member{}, err
	}
	return member{
		def:      def,
		elem:     abi.Info{Size: elemInfo.Size, Align: elemInfo.Align},
		compound: nested,
	}, nil
}

// findMember locates a member by name in c or its parent chain.
func (b *Builder) findMember(c *typedb.Compound, name string) (*typedb.Compound, *typedb.Member, error) {
	for cur := c; cur != nil; {
		for i := range cur.Members {
			if cur.Members[i].Name == name {
				return cur, &cur.Members[i], nil
			}
		}
		parent, err := b.db.Parent(cur)
		if err != nil {
			return nil, nil, err
		}
		cur = parent
	}
	return nil, nil, errors.New(errors.PhaseLayout, errors.KindNotFound).
		Type(c.Name).
		Detail("member %q not found", name).
		Build()
}

// Offset resolves a member path inside c and returns the member's type name
// and its byte offset from the start of c.
func (b *Builder) Offset(c *typedb.Compound, path sympath.Path) (string, uint32, error) {
	if len(path) == 0 {
		return "", 0, errors.MalformedPath(errors.PhaseLayout, "")
	}

	cur := c
	total := uint32(0)
	for i, seg := range path {
		info, err := b.Compound(cur)
		if err != nil {
			return "", 0, err
		}

		owner, def, err := b.findMember(cur, seg.Name)
		if err != nil {
			return "", 0, err
		}

		off, ok := info.Offsets[seg.Name]
		if !ok {
			return "", 0, errors.New(errors.PhaseLayout, errors.KindNotFound).
				Type(cur.Name).
				Detail("member %q has no recorded offset", seg.Name).
				Build()
		}
		total += off

		m, err := b.resolve(owner, def)
		if err != nil {
			return "", 0, err
		}

		if seg.Indexed() {
			if seg.Index >= def.Count {
				return "", 0, errors.OutOfBounds(errors.PhaseLayout, pathStrings(path[:i+1]), seg.Index, def.Count)
			}
			total += uint32(seg.Index) * m.elem.Size
		}

		if i == len(path)-1 {
			return def.Type, total, nil
		}
		if m.compound == nil {
			return "", 0, errors.New(errors.PhaseLayout, errors.KindInvalidData).
				Path(pathStrings(path[:i+1])...).
				Type(cur.Name).
				Detail("member %q is not a compound", seg.Name).
				Build()
		}
		cur = m.compound
	}
	// unreachable: the loop always returns on the last segment
	return "", 0, errors.MalformedPath(errors.PhaseLayout, path.String())
}

func pathStrings(p sympath.Path) []string {
	out := make([]string, len(p))
	for i, seg := range p {
		out[i] = seg.String()
	}
	return out
}

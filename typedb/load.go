package typedb

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/xmltree"
)

// LoadDir loads every *.xml document in dir into one database. Files are
// read in name order so duplicate detection is deterministic.
func LoadDir(dir string) (*DB, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Load("read database directory", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, errors.Load("no xml documents in "+dir, nil)
	}
	sort.Strings(files)

	db := New()
	for _, name := range files {
		root, err := xmltree.ParseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if err := db.ReadTree(root); err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, name)
		}
	}
	return db, nil
}

// Read parses one XML document and merges it into the database.
func (db *DB) Read(r io.Reader) error {
	root, err := xmltree.Parse(r)
	if err != nil {
		return err
	}
	return db.ReadTree(root)
}

// ReadTree merges one parsed document into the database. Recognized roots
// are <data-definition> and <symbol-tables>.
func (db *DB) ReadTree(root *xmltree.Element) error {
	switch root.Name {
	case "data-definition":
		return db.readDefinitions(root)
	case "symbol-tables":
		return db.readSymbolTables(root)
	default:
		return errors.InvalidTag(errors.PhaseLoad, root.Name)
	}
}

func (db *DB) readDefinitions(root *xmltree.Element) error {
	for _, el := range root.Children {
		switch el.Name {
		case "compound", "class-type", "struct-type":
			c, err := readCompound(el)
			if err != nil {
				return err
			}
			if _, exists := db.compounds[c.Name]; exists {
				return errors.Duplicate(errors.PhaseLoad, "compound", c.Name)
			}
			db.compounds[c.Name] = c
		case "enum":
			e, err := readEnum(el)
			if err != nil {
				return err
			}
			if _, exists := db.enums[e.Name]; exists {
				return errors.Duplicate(errors.PhaseLoad, "enum", e.Name)
			}
			db.enums[e.Name] = e
		case "bitfield":
			b, err := readBitfield(el)
			if err != nil {
				return err
			}
			if _, exists := db.bitfields[b.Name]; exists {
				return errors.Duplicate(errors.PhaseLoad, "bitfield", b.Name)
			}
			db.bitfields[b.Name] = b
		case "global":
			g, err := readGlobal(el)
			if err != nil {
				return err
			}
			if _, exists := db.globals[g.Name]; exists {
				return errors.Duplicate(errors.PhaseLoad, "global", g.Name)
			}
			db.globals[g.Name] = g
		default:
			return errors.InvalidTag(errors.PhaseLoad, el.Name)
		}
	}
	return nil
}

func readCompound(el *xmltree.Element) (*Compound, error) {
	name := el.Attr("name")
	if name == "" {
		return nil, errors.MissingAttr(errors.PhaseLoad, el.Name, "name")
	}

	c := &Compound{
		Name:     name,
		Parent:   el.Attr("parent"),
		Virtual:  el.Attr("virtual") == "true" || el.Name == "class-type",
		Children: make(map[string]*Compound),
	}

	for _, child := range el.Children {
		switch child.Name {
		case "field":
			fname := child.Attr("name")
			ftype := child.Attr("type")
			if fname == "" {
				return nil, errors.MissingAttr(errors.PhaseLoad, "field", "name")
			}
			if ftype == "" {
				return nil, errors.MissingAttr(errors.PhaseLoad, "field", "type")
			}
			count := int(child.AttrInt("count", 1))
			if count < 1 {
				return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
					Path(name, fname).
					Detail("invalid count %q", child.Attr("count")).
					Build()
			}
			c.Members = append(c.Members, Member{Name: fname, Type: ftype, Count: count})
		case "vmethod":
			mname := child.Attr("name")
			if mname == "" {
				return nil, errors.MissingAttr(errors.PhaseLoad, "vmethod", "name")
			}
			c.VMethods = append(c.VMethods, mname)
			c.Virtual = true
		case "compound", "class-type", "struct-type":
			nested, err := readCompound(child)
			if err != nil {
				return nil, err
			}
			if _, exists := c.Children[nested.Name]; exists {
				return nil, errors.Duplicate(errors.PhaseLoad, "nested compound", name+"."+nested.Name)
			}
			c.Children[nested.Name] = nested
		default:
			return nil, errors.InvalidTag(errors.PhaseLoad, child.Name)
		}
	}
	return c, nil
}

func readEnum(el *xmltree.Element) (*Enum, error) {
	name := el.Attr("name")
	if name == "" {
		return nil, errors.MissingAttr(errors.PhaseLoad, "enum", "name")
	}

	base := KindInt32
	if attr := el.Attr("base"); attr != "" {
		k, ok := ParseKind(attr)
		if !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Type(name).
				Detail("unknown enum base %q", attr).
				Build()
		}
		base = k
	}

	e := &Enum{Name: name, Base: base, Values: make(map[string]int64)}
	next := int64(0)
	for _, child := range el.Children {
		if child.Name != "item" {
			return nil, errors.InvalidTag(errors.PhaseLoad, child.Name)
		}
		iname := child.Attr("name")
		if iname == "" {
			return nil, errors.MissingAttr(errors.PhaseLoad, "item", "name")
		}
		if _, exists := e.Values[iname]; exists {
			return nil, errors.Duplicate(errors.PhaseLoad, "enum item", name+"."+iname)
		}
		value := child.AttrInt("value", next)
		e.Values[iname] = value
		next = value + 1
	}
	return e, nil
}

func readBitfield(el *xmltree.Element) (*Bitfield, error) {
	name := el.Attr("name")
	if name == "" {
		return nil, errors.MissingAttr(errors.PhaseLoad, "bitfield", "name")
	}

	base := KindUint32
	if attr := el.Attr("base"); attr != "" {
		k, ok := ParseKind(attr)
		if !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Type(name).
				Detail("unknown bitfield base %q", attr).
				Build()
		}
		base = k
	}

	b := &Bitfield{Name: name, Base: base}
	next := uint32(0)
	for _, child := range el.Children {
		if child.Name != "flag" {
			return nil, errors.InvalidTag(errors.PhaseLoad, child.Name)
		}
		fname := child.Attr("name")
		if fname == "" {
			return nil, errors.MissingAttr(errors.PhaseLoad, "flag", "name")
		}
		if b.Find(fname) != nil {
			return nil, errors.Duplicate(errors.PhaseLoad, "flag", name+"."+fname)
		}
		offset := uint32(child.AttrInt("offset", int64(next)))
		count := uint32(child.AttrInt("count", 1))
		if count < 1 {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(name, fname).
				Detail("invalid flag count %q", child.Attr("count")).
				Build()
		}
		b.Flags = append(b.Flags, Flag{Name: fname, Offset: offset, Count: count})
		next = offset + count
	}
	return b, nil
}

func readGlobal(el *xmltree.Element) (*GlobalObject, error) {
	name := el.Attr("name")
	if name == "" {
		return nil, errors.MissingAttr(errors.PhaseLoad, "global", "name")
	}
	typ := el.Attr("type")
	if typ == "" {
		return nil, errors.MissingAttr(errors.PhaseLoad, "global", "type")
	}
	return &GlobalObject{Name: name, Type: typ}, nil
}

func (db *DB) readSymbolTables(root *xmltree.Element) error {
	for _, el := range root.Children {
		if el.Name != "symbol-table" {
			return errors.InvalidTag(errors.PhaseLoad, el.Name)
		}
		v, err := readSymbolTable(el)
		if err != nil {
			return err
		}
		if _, err := db.VersionByName(v.Name); err == nil {
			return errors.Duplicate(errors.PhaseLoad, "version", v.Name)
		}
		db.versions = append(db.versions, v)
	}
	return nil
}

func readSymbolTable(el *xmltree.Element) (*VersionInfo, error) {
	name := el.Attr("name")
	if name == "" {
		return nil, errors.MissingAttr(errors.PhaseLoad, "symbol-table", "name")
	}

	id, err := parseVersionID(el.Attr("id"))
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Detail("version %s: bad id %q", name, el.Attr("id")).
			Cause(err).
			Build()
	}

	v := &VersionInfo{
		Name:            name,
		ID:              id,
		GlobalAddresses: make(map[string]uint64),
		VTableAddresses: make(map[string]uint64),
	}

	for _, child := range el.Children {
		cname := child.Attr("name")
		if cname == "" {
			return nil, errors.MissingAttr(errors.PhaseLoad, child.Name, "name")
		}
		value := child.AttrInt("value", -1)
		if value < 0 {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(name, cname).
				Detail("bad address %q", child.Attr("value")).
				Build()
		}
		switch child.Name {
		case "global-address":
			v.GlobalAddresses[cname] = uint64(value)
		case "vtable-address":
			v.VTableAddresses[cname] = uint64(value)
		default:
			return nil, errors.InvalidTag(errors.PhaseLoad, child.Name)
		}
	}
	return v, nil
}

func parseVersionID(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

// Package globals resolves dotted paths of global objects to concrete
// addresses for a specific binary version.
//
// The first path segment names a global object declared in the database;
// its address comes from the version's symbol table. Remaining segments
// descend through the object's members using the computed layout.
package globals

import (
	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/layout"
	"github.com/offsetlab/layoutkit/sympath"
	"github.com/offsetlab/layoutkit/typedb"
)

// Resolve returns the address of the object named by path in the given
// version.
func Resolve(db *typedb.DB, version *typedb.VersionInfo, b *layout.Builder, path sympath.Path) (uint64, error) {
	if len(path) == 0 {
		return 0, errors.MalformedPath(errors.PhaseResolve, "")
	}
	if path[0].Indexed() {
		return 0, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			Detail("global %q cannot be subscripted", path[0].Name).
			Build()
	}

	g, err := db.Global(path[0].Name)
	if err != nil {
		return 0, err
	}
	addr, ok := version.GlobalAddresses[g.Name]
	if !ok {
		return 0, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Detail("no address for global %q in version %s", g.Name, version.Name).
			Build()
	}

	if len(path) == 1 {
		return addr, nil
	}

	typePath, err := sympath.Parse(g.Type)
	if err != nil {
		return 0, errors.New(errors.PhaseResolve, errors.KindMalformedPath).
			Detail("global %q has bad type %q", g.Name, g.Type).
			Build()
	}
	c, err := db.Compound(typePath)
	if err != nil {
		return 0, err
	}

	_, off, err := b.Offset(c, path[1:])
	if err != nil {
		return 0, err
	}
	return addr + uint64(off), nil
}

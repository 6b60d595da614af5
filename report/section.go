package report

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/offsetlab/layoutkit/errors"
	"github.com/offsetlab/layoutkit/globals"
	"github.com/offsetlab/layoutkit/sympath"
	"github.com/offsetlab/layoutkit/typedb"
	"github.com/offsetlab/layoutkit/xmltree"
)

// EvalSection evaluates the children of one section element in document
// order, emitting one report line per directive. Directive failures are
// logged and skipped; the section keeps going and reports overall success.
func (ctx *Context) EvalSection(w *Writer, el *xmltree.Element) bool {
	ok := true
	for _, child := range el.Children {
		d, err := parseDirective(child)
		if err != nil {
			Logger().Error("invalid tag name",
				zap.String("tag", child.Name),
				zap.String("section", el.Attr("name")))
			ok = false
			continue
		}

		// Any directive carrying a type attribute resolves the
		// compound up front, vtable included.
		var c *typedb.Compound
		if d.Type != "" {
			c, err = ctx.findCompound(d.Type)
			if err != nil {
				Logger().Error("type not found",
					zap.String("type", d.Type),
					zap.String("entry", d.Name),
					zap.Error(err))
				ok = false
				continue
			}
		}

		value, err := ctx.resolve(d, c)
		if err != nil {
			Logger().Error("directive failed",
				zap.Stringer("directive", d.Kind),
				zap.String("entry", d.Name),
				zap.Error(err))
			ok = false
			continue
		}
		w.Value(d.Name, value)
	}
	return ok
}

func (ctx *Context) findCompound(name string) (*typedb.Compound, error) {
	path, err := sympath.Parse(name)
	if err != nil {
		return nil, err
	}
	return ctx.DB.Compound(path)
}

// resolve computes the value of one directive. It is the single dispatch
// point for all directive kinds.
func (ctx *Context) resolve(d Directive, c *typedb.Compound) (uint64, error) {
	switch d.Kind {
	case DirOffset:
		return ctx.resolveOffset(d, c)
	case DirSize:
		return ctx.resolveSize(d, c)
	case DirVMethod:
		return ctx.resolveVMethod(d, c)
	case DirValue:
		return ctx.resolveValue(d)
	case DirGlobal:
		return ctx.resolveGlobal(d)
	case DirVTable:
		return ctx.resolveVTable(d)
	default:
		return 0, errors.InvalidTag(errors.PhaseScript, d.Kind.String())
	}
}

func (ctx *Context) resolveOffset(d Directive, c *typedb.Compound) (uint64, error) {
	if c == nil {
		return 0, errors.MissingAttr(errors.PhaseScript, "offset", "type")
	}
	path, err := sympath.Parse(d.Member)
	if err != nil {
		return 0, err
	}
	_, off, err := ctx.Layout.Offset(c, path)
	if err != nil {
		return 0, err
	}
	return uint64(off), nil
}

func (ctx *Context) resolveSize(d Directive, c *typedb.Compound) (uint64, error) {
	if c == nil {
		return 0, errors.MissingAttr(errors.PhaseScript, "size", "type")
	}
	size, err := ctx.Layout.SizeOf(c)
	if err != nil {
		return 0, err
	}
	return uint64(size), nil
}

func (ctx *Context) resolveVMethod(d Directive, c *typedb.Compound) (uint64, error) {
	if c == nil {
		return 0, errors.MissingAttr(errors.PhaseScript, "vmethod", "type")
	}
	idx, err := ctx.DB.MethodIndex(c, d.Method)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Type(c.Name).
			Detail("method %q not found", d.Method).
			Build()
	}
	return uint64(idx) * uint64(ctx.ABI.PointerSize), nil
}

func (ctx *Context) resolveValue(d Directive) (uint64, error) {
	if !d.HasEnum {
		// A missing or unparsable literal resolves to 0.
		v, err := strconv.ParseInt(d.Value, 0, 64)
		if err != nil {
			return 0, nil
		}
		return uint64(v), nil
	}

	e, err := ctx.DB.Enum(d.Enum)
	if err != nil {
		return 0, err
	}
	v, ok := e.Values[d.Value]
	if !ok {
		return 0, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Type(d.Enum).
			Detail("enum value %q not found", d.Value).
			Build()
	}
	return uint64(v), nil
}

func (ctx *Context) resolveGlobal(d Directive) (uint64, error) {
	path, err := sympath.Parse(d.Object)
	if err != nil {
		return 0, err
	}
	return globals.Resolve(ctx.DB, ctx.Version, ctx.Layout, path)
}

func (ctx *Context) resolveVTable(d Directive) (uint64, error) {
	addr, ok := ctx.Version.VTableAddresses[d.Type]
	if !ok {
		return 0, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Type(d.Type).
			Detail("no vtable address in version %s", ctx.Version.Name).
			Build()
	}
	return addr, nil
}

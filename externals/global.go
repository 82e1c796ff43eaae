package externals

import (
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// Global is a single typed value owned by a Context.
type Global struct {
	handle store.Handle[*store.VMGlobal]
}

// NewGlobal creates a global holding val. Only numeric globals are
// supported; the value kind must match the declared type.
func NewGlobal(ctx *store.Context, ty types.GlobalType, val Value) (*Global, error) {
	if ty.Type == types.FuncRef || ty.Type == types.ExternRef {
		return nil, errors.Generic(errors.PhaseExtern,
			"reference-typed globals are not supported, got %s", ty.Type)
	}
	if val.Kind() != ty.Type {
		return nil, errors.TypeMismatch(errors.PhaseExtern, val.Kind().String(), ty.Type.String())
	}
	return globalFromVM(ctx, store.NewVMGlobal(ty, val.Raw())), nil
}

func globalFromVM(ctx *store.Context, vm *store.VMGlobal) *Global {
	return &Global{handle: store.NewHandle(ctx, ctx.Globals(), vm)}
}

func globalFromInternal(ctx *store.Context, h store.InternalHandle[*store.VMGlobal]) *Global {
	return &Global{handle: store.FromInternal(ctx.ID(), h)}
}

func (g *Global) vm(ctx *store.Context) (*store.VMGlobal, error) {
	return g.handle.Get(ctx, ctx.Globals())
}

// Type returns the global's declared type.
func (g *Global) Type(ctx *store.Context) (types.GlobalType, error) {
	vm, err := g.vm(ctx)
	if err != nil {
		return types.GlobalType{}, err
	}
	return vm.Type, nil
}

// Get returns the global's current value.
func (g *Global) Get(ctx *store.Context) (Value, error) {
	vm, err := g.vm(ctx)
	if err != nil {
		return Value{}, err
	}
	return RawValue(vm.Type.Type, vm.Raw()), nil
}

// Set replaces the global's value. Fails on immutable globals and on a
// value kind that disagrees with the declared type.
func (g *Global) Set(ctx *store.Context, val Value) error {
	vm, err := g.vm(ctx)
	if err != nil {
		return err
	}
	if !vm.Type.Mutable {
		return errors.Generic(errors.PhaseExtern, "global is immutable")
	}
	if val.Kind() != vm.Type.Type {
		return errors.TypeMismatch(errors.PhaseExtern, val.Kind().String(), vm.Type.Type.String())
	}
	vm.SetRaw(val.Raw())
	return nil
}

// FromContext reports whether this global was created by ctx.
func (g *Global) FromContext(ctx *store.Context) bool {
	return g.handle.FromContext(ctx)
}

// AsExtern wraps the global in the extern union.
func (g *Global) AsExtern() Extern {
	return Extern{kind: types.ExternGlobal, global: g}
}

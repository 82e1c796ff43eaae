package externals

import (
	wasmembed "github.com/wippyai/wasm-embed"
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// Function is a callable owned by a Context: a host function published to
// guests, or a guest export lifted into the store.
type Function struct {
	handle store.Handle[*store.VMFunction]
}

// NewFunction registers a callable with its declared signature.
func NewFunction(ctx *store.Context, ty types.FunctionType, callable wasmembed.Callable) *Function {
	return functionFromVM(ctx, store.NewVMFunction(ty, callable))
}

func functionFromVM(ctx *store.Context, vm *store.VMFunction) *Function {
	return &Function{handle: store.NewHandle(ctx, ctx.Functions(), vm)}
}

func functionFromInternal(ctx *store.Context, h store.InternalHandle[*store.VMFunction]) *Function {
	return &Function{handle: store.FromInternal(ctx.ID(), h)}
}

func (f *Function) vm(ctx *store.Context) (*store.VMFunction, error) {
	return f.handle.Get(ctx, ctx.Functions())
}

// Type returns the function's declared signature.
func (f *Function) Type(ctx *store.Context) (types.FunctionType, error) {
	vm, err := f.vm(ctx)
	if err != nil {
		return types.FunctionType{}, err
	}
	return vm.Type, nil
}

// Callable returns the raw callable identity.
func (f *Function) Callable(ctx *store.Context) (wasmembed.Callable, error) {
	vm, err := f.vm(ctx)
	if err != nil {
		return nil, err
	}
	return vm.Callable, nil
}

// Call invokes the function with typed arguments, checking arity and value
// kinds against the declared signature before crossing the raw boundary.
func (f *Function) Call(ctx *store.Context, args ...Value) ([]Value, error) {
	vm, err := f.vm(ctx)
	if err != nil {
		return nil, err
	}
	ty := vm.Type
	if len(args) != len(ty.Params) {
		return nil, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			Detail("expected %d arguments, got %d", len(ty.Params), len(args)).
			Build()
	}

	raw := make([]uint64, len(args))
	for i, arg := range args {
		if arg.Kind() != ty.Params[i] {
			return nil, errors.TypeMismatch(errors.PhaseHost,
				arg.Kind().String(), ty.Params[i].String())
		}
		if arg.Kind() == types.FuncRef {
			return nil, errors.Generic(errors.PhaseHost,
				"funcref arguments cannot cross the raw call boundary")
		}
		if !arg.FromContext(ctx) {
			return nil, errors.CrossContextUse(errors.PhaseHost, "argument value")
		}
		raw[i] = arg.Raw()
	}

	rawResults, err := vm.Callable(raw)
	if err != nil {
		return nil, err
	}
	if len(rawResults) != len(ty.Results) {
		return nil, errors.Generic(errors.PhaseHost,
			"callable returned %d results, signature declares %d", len(rawResults), len(ty.Results))
	}

	results := make([]Value, len(rawResults))
	for i, bits := range rawResults {
		results[i] = RawValue(ty.Results[i], bits)
	}
	return results, nil
}

// FromContext reports whether this function was created by ctx.
func (f *Function) FromContext(ctx *store.Context) bool {
	return f.handle.FromContext(ctx)
}

// AsExtern wraps the function in the extern union.
func (f *Function) AsExtern() Extern {
	return Extern{kind: types.ExternFunction, function: f}
}

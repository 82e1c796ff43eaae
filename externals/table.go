package externals

import (
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// Table is an array of function references owned by a Context.
type Table struct {
	handle store.Handle[*store.VMTable]
}

// NewTable creates a table sized to its declared minimum with every element
// set to init. init must be a funcref value created by the same context.
func NewTable(ctx *store.Context, ty types.TableType, init Value) (*Table, error) {
	if ty.Elem != types.FuncRef {
		return nil, errors.Generic(errors.PhaseExtern,
			"only funcref tables are supported, got %s", ty.Elem)
	}
	fn, err := tableElem(ctx, init)
	if err != nil {
		return nil, err
	}
	return tableFromVM(ctx, store.NewVMTable(ty, fn)), nil
}

func tableFromVM(ctx *store.Context, vm *store.VMTable) *Table {
	return &Table{handle: store.NewHandle(ctx, ctx.Tables(), vm)}
}

func tableFromInternal(ctx *store.Context, h store.InternalHandle[*store.VMTable]) *Table {
	return &Table{handle: store.FromInternal(ctx.ID(), h)}
}

// tableElem validates a value before it reaches shared table state: it must
// be a funcref, and it must not come from a foreign context.
func tableElem(ctx *store.Context, v Value) (*store.VMFunction, error) {
	if v.Kind() != types.FuncRef {
		return nil, errors.TypeMismatch(errors.PhaseExtern, v.Kind().String(), "funcref")
	}
	if !v.FromContext(ctx) {
		return nil, errors.CrossContextUse(errors.PhaseExtern, "table element value")
	}
	f := v.FuncRef()
	if f == nil {
		return nil, nil
	}
	return f.vm(ctx)
}

func (t *Table) vm(ctx *store.Context) (*store.VMTable, error) {
	return t.handle.Get(ctx, ctx.Tables())
}

// Type returns the table's declared type.
func (t *Table) Type(ctx *store.Context) (types.TableType, error) {
	vm, err := t.vm(ctx)
	if err != nil {
		return types.TableType{}, err
	}
	return vm.Type, nil
}

// Size returns the current element count.
func (t *Table) Size(ctx *store.Context) (uint32, error) {
	vm, err := t.vm(ctx)
	if err != nil {
		return 0, err
	}
	return vm.Size(), nil
}

// Get retrieves the element at index as a funcref value.
func (t *Table) Get(ctx *store.Context, index uint32) (Value, error) {
	vm, err := t.vm(ctx)
	if err != nil {
		return Value{}, err
	}
	fn, ok := vm.Get(index)
	if !ok {
		return Value{}, errors.Generic(errors.PhaseExtern,
			"table index %d out of range (size %d)", index, vm.Size())
	}
	if fn == nil {
		return FuncRefValue(nil), nil
	}
	return FuncRefValue(functionFromVM(ctx, fn)), nil
}

// Set stores a funcref value at index. The value's context identity is
// validated before the table is mutated.
func (t *Table) Set(ctx *store.Context, index uint32, v Value) error {
	vm, err := t.vm(ctx)
	if err != nil {
		return err
	}
	fn, err := tableElem(ctx, v)
	if err != nil {
		return err
	}
	if !vm.Set(index, fn) {
		return errors.Generic(errors.PhaseExtern,
			"table index %d out of range (size %d)", index, vm.Size())
	}
	return nil
}

// Grow extends the table by delta elements initialized to init, returning
// the size before the call.
func (t *Table) Grow(ctx *store.Context, delta uint32, init Value) (uint32, error) {
	vm, err := t.vm(ctx)
	if err != nil {
		return 0, err
	}
	fn, err := tableElem(ctx, init)
	if err != nil {
		return 0, err
	}
	prev, ok := vm.Grow(delta, fn)
	if !ok {
		return 0, errors.Generic(errors.PhaseExtern,
			"table could not grow: current size %d, requested increase %d", prev, delta)
	}
	return prev, nil
}

// FromContext reports whether this table was created by ctx.
func (t *Table) FromContext(ctx *store.Context) bool {
	return t.handle.FromContext(ctx)
}

// AsExtern wraps the table in the extern union.
func (t *Table) AsExtern() Extern {
	return Extern{kind: types.ExternTable, table: t}
}

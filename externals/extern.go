package externals

import (
	"fmt"

	wasmembed "github.com/wippyai/wasm-embed"
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// Extern is the closed union over the four WebAssembly external kinds.
// Exactly one case is set, matching Kind.
type Extern struct {
	function *Function
	table    *Table
	memory   *Memory
	global   *Global
	kind     types.ExternKind
}

// Kind returns which case the extern holds.
func (e Extern) Kind() types.ExternKind { return e.kind }

// Function returns the function case, or false for other kinds.
func (e Extern) Function() (*Function, bool) {
	return e.function, e.kind == types.ExternFunction
}

// Table returns the table case, or false for other kinds.
func (e Extern) Table() (*Table, bool) {
	return e.table, e.kind == types.ExternTable
}

// Memory returns the memory case, or false for other kinds.
func (e Extern) Memory() (*Memory, bool) {
	return e.memory, e.kind == types.ExternMemory
}

// Global returns the global case, or false for other kinds.
func (e Extern) Global() (*Global, bool) {
	return e.global, e.kind == types.ExternGlobal
}

// Type returns the extern's declared type.
func (e Extern) Type(ctx *store.Context) (types.ExternType, error) {
	switch e.kind {
	case types.ExternFunction:
		return e.function.Type(ctx)
	case types.ExternTable:
		return e.table.Type(ctx)
	case types.ExternMemory:
		return e.memory.Type(ctx)
	case types.ExternGlobal:
		return e.global.Type(ctx)
	default:
		return nil, errors.Generic(errors.PhaseExtern, "empty extern")
	}
}

// FromContext reports whether the wrapped object was created by ctx.
func (e Extern) FromContext(ctx *store.Context) bool {
	switch e.kind {
	case types.ExternFunction:
		return e.function.FromContext(ctx)
	case types.ExternTable:
		return e.table.FromContext(ctx)
	case types.ExternMemory:
		return e.memory.FromContext(ctx)
	case types.ExternGlobal:
		return e.global.FromContext(ctx)
	default:
		return false
	}
}

// ToExport strips the extern down to its wire-level representation. The
// context identity is validated here because the Export that comes out no
// longer carries it.
func (e Extern) ToExport(ctx *store.Context) (store.Export, error) {
	if e.kind == types.ExternInvalid {
		return store.Export{}, errors.Generic(errors.PhaseExtern, "empty extern")
	}
	if !e.FromContext(ctx) {
		return store.Export{}, errors.CrossContextUse(errors.PhaseExtern, "extern")
	}
	switch e.kind {
	case types.ExternFunction:
		return store.ExportFunction(e.function.handle.Internal()), nil
	case types.ExternTable:
		return store.ExportTable(e.table.handle.Internal()), nil
	case types.ExternMemory:
		return store.ExportMemory(e.memory.handle.Internal()), nil
	case types.ExternGlobal:
		return store.ExportGlobal(e.global.handle.Internal()), nil
	default:
		return store.Export{}, errors.Generic(errors.PhaseExtern, "empty extern")
	}
}

// FromExport materializes a wire-level export into a public extern, tagging
// its handle with ctx's identity. ctx must be the context whose arenas
// produced the export.
func FromExport(ctx *store.Context, e store.Export) (Extern, error) {
	switch e.Kind() {
	case types.ExternFunction:
		h, _ := e.Function()
		return functionFromInternal(ctx, h).AsExtern(), nil
	case types.ExternTable:
		h, _ := e.Table()
		return tableFromInternal(ctx, h).AsExtern(), nil
	case types.ExternMemory:
		h, _ := e.Memory()
		return memoryFromInternal(ctx, h).AsExtern(), nil
	case types.ExternGlobal:
		h, _ := e.Global()
		return globalFromInternal(ctx, h).AsExtern(), nil
	default:
		return Extern{}, errors.Generic(errors.PhaseExtern, "empty export")
	}
}

// FromHostValue converts an engine-native value into an Extern of the
// required type. The value's runtime kind is checked against the required
// kind before anything is placed in the arena; a wrongly-kinded value stored
// under the wrong arena would later be reached through kind-specific
// operations and break memory safety.
//
// Native representations: wasmembed.LinearMemory for memories,
// wasmembed.Callable for functions, *store.VMTable for tables and raw value
// bits (uint64) for globals.
func FromHostValue(ctx *store.Context, val any, required types.ExternType) (Extern, error) {
	switch ty := required.(type) {
	case types.MemoryType:
		lin, ok := val.(wasmembed.LinearMemory)
		if !ok {
			return Extern{}, errors.TypeMismatch(errors.PhaseExtern, foundKind(val), "memory")
		}
		return memoryFromVM(ctx, store.NewVMMemory(lin, ty)).AsExtern(), nil

	case types.FunctionType:
		callable, ok := val.(wasmembed.Callable)
		if !ok {
			return Extern{}, errors.TypeMismatch(errors.PhaseExtern, foundKind(val), "function")
		}
		return NewFunction(ctx, ty, callable).AsExtern(), nil

	case types.TableType:
		vm, ok := val.(*store.VMTable)
		if !ok {
			return Extern{}, errors.TypeMismatch(errors.PhaseExtern, foundKind(val), "table")
		}
		return tableFromVM(ctx, vm).AsExtern(), nil

	case types.GlobalType:
		bits, ok := val.(uint64)
		if !ok {
			return Extern{}, errors.TypeMismatch(errors.PhaseExtern, foundKind(val), "global")
		}
		return globalFromVM(ctx, store.NewVMGlobal(ty, bits)).AsExtern(), nil

	default:
		return Extern{}, errors.Generic(errors.PhaseExtern, "unknown required extern type %T", required)
	}
}

// foundKind names a host value's kind for mismatch diagnostics.
func foundKind(val any) string {
	switch val.(type) {
	case wasmembed.LinearMemory:
		return "memory"
	case wasmembed.Callable:
		return "function"
	case *store.VMTable:
		return "table"
	case uint64:
		return "global"
	default:
		return fmt.Sprintf("%T", val)
	}
}

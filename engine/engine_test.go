package engine

import (
	"context"
	"testing"

	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/imports"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// (module
//   (func (export "add") (param i32 i32) (result i32)
//     local.get 0 local.get 1 i32.add)
//   (memory (export "mem") 1 2))
var addModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x05, 0x04, 0x01, 0x01, 0x01, 0x02,
	0x07, 0x0d, 0x02,
	0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x03, 0x6d, 0x65, 0x6d, 0x02, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

// (module (import "env" "missing_fn" (func)))
var missingImportModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x02, 0x12, 0x01,
	0x03, 0x65, 0x6e, 0x76,
	0x0a, 0x6d, 0x69, 0x73, 0x73, 0x69, 0x6e, 0x67, 0x5f, 0x66, 0x6e,
	0x00, 0x00,
}

// (module
//   (import "env" "add_one" (func (param i32) (result i32)))
//   (func (export "call") (param i32) (result i32)
//     local.get 0 call 0))
var hostCallModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x02, 0x0f, 0x01,
	0x03, 0x65, 0x6e, 0x76,
	0x07, 0x61, 0x64, 0x64, 0x5f, 0x6f, 0x6e, 0x65,
	0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x08, 0x01, 0x04, 0x63, 0x61, 0x6c, 0x6c, 0x00, 0x01,
	0x0a, 0x08, 0x01, 0x06, 0x00, 0x20, 0x00, 0x10, 0x00, 0x0b,
}

func newEngine(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	ctx := context.Background()
	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close(ctx) })
	return eng, ctx
}

func TestCompileReportsTypes(t *testing.T) {
	eng, ctx := newEngine(t)

	mod, err := eng.Compile(ctx, addModule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if n := len(mod.ImportTypes()); n != 0 {
		t.Fatalf("ImportTypes = %d entries, want 0", n)
	}

	exports := mod.ExportTypes()
	if len(exports) != 2 {
		t.Fatalf("ExportTypes = %d entries, want 2", len(exports))
	}
	if exports[0].Name != "add" {
		t.Fatalf("first export = %q, want add", exports[0].Name)
	}
	ft, ok := exports[0].Type.(types.FunctionType)
	if !ok {
		t.Fatalf("add export type = %T, want FunctionType", exports[0].Type)
	}
	if ft.String() != "[i32 i32] -> [i32]" {
		t.Fatalf("add signature = %s", ft)
	}
	mt, ok := exports[1].Type.(types.MemoryType)
	if !ok {
		t.Fatalf("mem export type = %T, want MemoryType", exports[1].Type)
	}
	if mt.Minimum != 1 || mt.Maximum == nil || *mt.Maximum != 2 {
		t.Fatalf("mem limits = %+v, want min 1 max 2", mt)
	}
}

func TestCompileInvalidBytes(t *testing.T) {
	eng, ctx := newEngine(t)

	if _, err := eng.Compile(ctx, []byte{0x00, 0x61, 0x73}); err == nil {
		t.Fatal("truncated binary should not compile")
	}
}

func TestInstantiateAndCall(t *testing.T) {
	eng, ctx := newEngine(t)
	sctx := store.NewContext(nil)

	mod, err := eng.Compile(ctx, addModule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	inst, err := eng.Instantiate(ctx, sctx, mod, imports.New(), InstanceConfig{Name: "calc"})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	defer inst.Close(ctx)

	ext, ok := inst.GetExport("add")
	if !ok {
		t.Fatal("add export missing")
	}
	fn, ok := ext.Function()
	if !ok {
		t.Fatalf("add export kind = %v, want function", ext.Kind())
	}

	results, err := fn.Call(sctx, externals.I32(2), externals.I32(40))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(results) != 1 || results[0].I32() != 42 {
		t.Fatalf("Call = %v, want [42]", results)
	}
}

func TestLiftedMemory(t *testing.T) {
	eng, ctx := newEngine(t)
	sctx := store.NewContext(nil)

	mod, err := eng.Compile(ctx, addModule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	inst, err := eng.Instantiate(ctx, sctx, mod, imports.New(), InstanceConfig{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	defer inst.Close(ctx)

	ext, ok := inst.GetExport("mem")
	if !ok {
		t.Fatal("mem export missing")
	}
	mem, ok := ext.Memory()
	if !ok {
		t.Fatalf("mem export kind = %v, want memory", ext.Kind())
	}

	size, err := mem.Size(sctx)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 1 {
		t.Fatalf("Size = %d pages, want 1", size)
	}

	if err := mem.Write(sctx, 16, []byte{0xCA, 0xFE}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := mem.ReadBytes(sctx, 16, 2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if got[0] != 0xCA || got[1] != 0xFE {
		t.Fatalf("ReadBytes = %x, want cafe", got)
	}

	// The module declares max 2, so one growth fits and the next fails.
	prev, err := mem.Grow(sctx, 1)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if prev != 1 {
		t.Fatalf("Grow = %d, want 1", prev)
	}
	if _, err := mem.Grow(sctx, 1); !errors.IsKind(err, errors.KindCouldNotGrow) {
		t.Fatalf("Grow past max = %v, want could_not_grow", err)
	}
}

func TestInstantiateUnknownImport(t *testing.T) {
	eng, ctx := newEngine(t)
	sctx := store.NewContext(nil)

	mod, err := eng.Compile(ctx, missingImportModule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	_, err = eng.Instantiate(ctx, sctx, mod, imports.New(), InstanceConfig{})
	if !errors.IsKind(err, errors.KindUnknownImport) {
		t.Fatalf("Instantiate = %v, want unknown_import", err)
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("unexpected error type %T", err)
	}
	if e.Namespace != "env" || e.Name != "missing_fn" {
		t.Fatalf("error names %q.%q, want env.missing_fn", e.Namespace, e.Name)
	}
}

func TestHostFunctionBridge(t *testing.T) {
	eng, ctx := newEngine(t)
	sctx := store.NewContext(nil)

	reg := imports.New()
	addOne := externals.NewFunction(sctx,
		types.FunctionType{Params: []types.ValType{types.I32}, Results: []types.ValType{types.I32}},
		func(args []uint64) ([]uint64, error) {
			return []uint64{uint64(uint32(args[0]) + 1)}, nil
		})
	reg.Define("env", "add_one", addOne.AsExtern())

	mod, err := eng.Compile(ctx, hostCallModule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	inst, err := eng.Instantiate(ctx, sctx, mod, reg, InstanceConfig{})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	defer inst.Close(ctx)

	ext, _ := inst.GetExport("call")
	fn, ok := ext.Function()
	if !ok {
		t.Fatal("call export should be a function")
	}
	results, err := fn.Call(sctx, externals.I32(41))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if results[0].I32() != 42 {
		t.Fatalf("Call = %d, want 42", results[0].I32())
	}
}

func TestHostFunctionSignatureMismatch(t *testing.T) {
	eng, ctx := newEngine(t)
	sctx := store.NewContext(nil)

	// Registered under the right name but with the wrong signature.
	reg := imports.New()
	wrong := externals.NewFunction(sctx,
		types.FunctionType{Params: []types.ValType{types.I64}, Results: []types.ValType{types.I64}},
		func(args []uint64) ([]uint64, error) {
			return args, nil
		})
	reg.Define("env", "add_one", wrong.AsExtern())

	mod, err := eng.Compile(ctx, hostCallModule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := eng.Instantiate(ctx, sctx, mod, reg, InstanceConfig{}); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Fatalf("Instantiate = %v, want type_mismatch", err)
	}
}

func TestHostImportWrongKind(t *testing.T) {
	eng, ctx := newEngine(t)
	sctx := store.NewContext(nil)

	// The resolver hands back whatever is registered at the key; the kind
	// check happens while bridging.
	reg := imports.New()
	mem, err := externals.NewMemory(sctx, types.MemoryType{Minimum: 1})
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	reg.Define("env", "add_one", mem.AsExtern())

	mod, err := eng.Compile(ctx, hostCallModule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := eng.Instantiate(ctx, sctx, mod, reg, InstanceConfig{}); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Fatalf("Instantiate = %v, want type_mismatch", err)
	}
}

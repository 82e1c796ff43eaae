package imports

import (
	"testing"

	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

type fakeModule struct {
	imports []types.ImportType
}

func (m fakeModule) ImportTypes() []types.ImportType { return m.imports }

func hostFn(ctx *store.Context) externals.Extern {
	fn := externals.NewFunction(ctx, types.FunctionType{Params: []types.ValType{types.I32}, Results: []types.ValType{types.I32}},
		func(args []uint64) ([]uint64, error) {
			return []uint64{args[0] + 1}, nil
		})
	return fn.AsExtern()
}

func hostMem(t *testing.T, ctx *store.Context) externals.Extern {
	t.Helper()
	mem, err := externals.NewMemory(ctx, types.MemoryType{Minimum: 1})
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return mem.AsExtern()
}

func TestDefineAndGet(t *testing.T) {
	ctx := store.NewContext(nil)
	im := New()

	if im.Exists("env", "add_one") {
		t.Fatal("empty registry should have no entries")
	}
	im.Define("env", "add_one", hostFn(ctx))

	ext, ok := im.GetExport("env", "add_one")
	if !ok {
		t.Fatal("Get after Define should succeed")
	}
	if ext.Kind() != types.ExternFunction {
		t.Fatalf("kind = %v, want function", ext.Kind())
	}
	if im.Len() != 1 {
		t.Fatalf("Len = %d, want 1", im.Len())
	}
}

func TestRegisterNamespaceLastWriteWins(t *testing.T) {
	ctx := store.NewContext(nil)
	im := New()

	im.RegisterNamespace("env", map[string]externals.Extern{
		"fn":  hostFn(ctx),
		"mem": hostMem(t, ctx),
	})
	im.RegisterNamespace("env", map[string]externals.Extern{
		"fn": hostMem(t, ctx),
	})

	ext, ok := im.GetExport("env", "fn")
	if !ok {
		t.Fatal("Get should succeed")
	}
	if ext.Kind() != types.ExternMemory {
		t.Fatalf("kind after re-registration = %v, want memory", ext.Kind())
	}

	if !im.ContainsNamespace("env") {
		t.Fatal("ContainsNamespace(env) should be true")
	}
	if im.ContainsNamespace("wasi_snapshot_preview1") {
		t.Fatal("unregistered namespace should be absent")
	}

	exports := im.NamespaceExports("env")
	if len(exports) != 2 {
		t.Fatalf("NamespaceExports = %d entries, want 2", len(exports))
	}
}

func TestForModuleDeclarationOrder(t *testing.T) {
	ctx := store.NewContext(nil)
	im := New()
	im.Define("env", "fn", hostFn(ctx))
	im.Define("env", "mem", hostMem(t, ctx))

	mod := fakeModule{imports: []types.ImportType{
		{Module: "env", Name: "mem", Type: types.MemoryType{Minimum: 1}},
		{Module: "env", Name: "fn", Type: types.FunctionType{Params: []types.ValType{types.I32}, Results: []types.ValType{types.I32}}},
	}}

	resolved, err := im.ForModule(ctx, mod)
	if err != nil {
		t.Fatalf("ForModule: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("resolved %d imports, want 2", len(resolved))
	}
	if resolved[0].Kind() != types.ExternMemory || resolved[1].Kind() != types.ExternFunction {
		t.Fatalf("resolution order wrong: %v, %v", resolved[0].Kind(), resolved[1].Kind())
	}
}

func TestForModuleMissingImport(t *testing.T) {
	ctx := store.NewContext(nil)
	im := New()

	want := types.FunctionType{Params: []types.ValType{types.I32, types.I64}}
	mod := fakeModule{imports: []types.ImportType{
		{Module: "env", Name: "missing_fn", Type: want},
	}}

	_, err := im.ForModule(ctx, mod)
	if !errors.IsKind(err, errors.KindUnknownImport) {
		t.Fatalf("ForModule = %v, want unknown_import", err)
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("unexpected error type %T", err)
	}
	if e.Namespace != "env" || e.Name != "missing_fn" {
		t.Fatalf("error names %q.%q, want env.missing_fn", e.Namespace, e.Name)
	}
	if e.Expected != want.String() {
		t.Fatalf("expected type %q, want %q", e.Expected, want.String())
	}
}

func TestForModuleResolvesByPresenceOnly(t *testing.T) {
	ctx := store.NewContext(nil)
	im := New()
	im.Define("env", "mem", hostMem(t, ctx))

	mod := fakeModule{imports: []types.ImportType{
		{Module: "env", Name: "mem", Type: types.FunctionType{}},
	}}

	resolved, err := im.ForModule(ctx, mod)
	if err != nil {
		t.Fatalf("ForModule: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Kind() != types.ExternMemory {
		t.Fatal("resolver should hand back the registered entry unchecked")
	}
}

func TestForModuleCrossContext(t *testing.T) {
	ctxA := store.NewContext(nil)
	ctxB := store.NewContext(nil)
	im := New()
	im.Define("env", "fn", hostFn(ctxA))

	mod := fakeModule{imports: []types.ImportType{
		{Module: "env", Name: "fn", Type: types.FunctionType{Params: []types.ValType{types.I32}, Results: []types.ValType{types.I32}}},
	}}

	if _, err := im.ForModule(ctxA, mod); err != nil {
		t.Fatalf("same context: %v", err)
	}
	if _, err := im.ForModule(ctxB, mod); !errors.IsKind(err, errors.KindCrossContextUse) {
		t.Fatalf("foreign context = %v, want cross_context_use", err)
	}
}

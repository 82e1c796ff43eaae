package store

import (
	"errors"
	"testing"

	wasmerrors "github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/types"
)

func TestArena_InsertGet(t *testing.T) {
	var a Arena[*VMGlobal]

	g0 := NewVMGlobal(types.GlobalType{Type: types.I32, Mutable: true}, 1)
	g1 := NewVMGlobal(types.GlobalType{Type: types.I64}, 2)

	if idx := a.Insert(g0); idx != 0 {
		t.Fatalf("first insert index = %d, want 0", idx)
	}
	if idx := a.Insert(g1); idx != 1 {
		t.Fatalf("second insert index = %d, want 1", idx)
	}
	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2", a.Len())
	}

	got, err := a.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if got != g1 {
		t.Fatal("Get(1) returned wrong value")
	}
}

func TestArena_InvalidHandle(t *testing.T) {
	var a Arena[*VMGlobal]
	_, err := a.Get(0)
	if !wasmerrors.IsKind(err, wasmerrors.KindInvalidHandle) {
		t.Fatalf("expected invalid_handle, got %v", err)
	}
}

func TestContext_Identity(t *testing.T) {
	a := NewContext(nil)
	b := NewContext(nil)
	if a.ID() == b.ID() {
		t.Fatal("two contexts share an identity")
	}
	if a.ID() != a.ID() {
		t.Fatal("identity not stable")
	}
}

func TestHandle_CrossContext(t *testing.T) {
	ctxA := NewContext(nil)
	ctxB := NewContext(nil)

	g := NewVMGlobal(types.GlobalType{Type: types.I32}, 7)
	h := NewHandle(ctxA, ctxA.Globals(), g)

	if !h.FromContext(ctxA) {
		t.Fatal("handle should belong to its creating context")
	}
	if h.FromContext(ctxB) {
		t.Fatal("handle should not belong to a foreign context")
	}

	// Dereference against the wrong context must fail before indexing,
	// even though ctxB's arena has no slot 0 at all.
	_, err := h.Get(ctxB, ctxB.Globals())
	if !wasmerrors.IsKind(err, wasmerrors.KindCrossContextUse) {
		t.Fatalf("expected cross_context_use, got %v", err)
	}

	got, err := h.Get(ctxA, ctxA.Globals())
	if err != nil {
		t.Fatalf("Get in owning context: %v", err)
	}
	if got != g {
		t.Fatal("Get returned wrong value")
	}
}

func TestHandle_CrossContextBeforeBounds(t *testing.T) {
	ctxA := NewContext(nil)
	ctxB := NewContext(nil)

	// ctxB has a populated arena; a foreign handle with a valid-looking
	// index must still be rejected on identity, not resolved.
	gB := NewVMGlobal(types.GlobalType{Type: types.I32}, 99)
	NewHandle(ctxB, ctxB.Globals(), gB)

	gA := NewVMGlobal(types.GlobalType{Type: types.I32}, 1)
	hA := NewHandle(ctxA, ctxA.Globals(), gA)

	_, err := hA.Get(ctxB, ctxB.Globals())
	if !wasmerrors.IsKind(err, wasmerrors.KindCrossContextUse) {
		t.Fatalf("expected cross_context_use, got %v", err)
	}
}

func TestHandle_ClosedContext(t *testing.T) {
	ctx := NewContext(nil)
	h := NewHandle(ctx, ctx.Globals(), NewVMGlobal(types.GlobalType{Type: types.I32}, 0))

	ctx.Close()
	if !ctx.Closed() {
		t.Fatal("Closed() should report true")
	}
	_, err := h.Get(ctx, ctx.Globals())
	if !wasmerrors.IsKind(err, wasmerrors.KindInvalidHandle) {
		t.Fatalf("expected invalid_handle after Close, got %v", err)
	}
}

func TestFromInternal(t *testing.T) {
	ctx := NewContext(nil)
	mem, err := NewLinearMemory(types.MemoryType{Minimum: 1})
	if err != nil {
		t.Fatal(err)
	}
	internal := NewInternalHandle(ctx.Memories(), NewVMMemory(mem, types.MemoryType{Minimum: 1}))

	h := FromInternal(ctx.ID(), internal)
	if h.ContextID() != ctx.ID() {
		t.Fatal("promotion lost the context identity")
	}
	if h.Internal().Index() != internal.Index() {
		t.Fatal("promotion lost the arena index")
	}
	if _, err := h.Get(ctx, ctx.Memories()); err != nil {
		t.Fatalf("promoted handle should dereference: %v", err)
	}
}

func TestExport_Cases(t *testing.T) {
	ctx := NewContext(nil)
	fn := NewInternalHandle(ctx.Functions(), NewVMFunction(types.FunctionType{}, nil))

	e := ExportFunction(fn)
	if e.Kind() != types.ExternFunction {
		t.Fatalf("Kind = %v, want function", e.Kind())
	}
	if _, ok := e.Function(); !ok {
		t.Fatal("Function case should be present")
	}
	if _, ok := e.Memory(); ok {
		t.Fatal("Memory case should be absent")
	}
}

func TestVMTable(t *testing.T) {
	max := uint32(3)
	tbl := NewVMTable(types.TableType{Elem: types.FuncRef, Minimum: 2, Maximum: &max}, nil)

	if tbl.Size() != 2 {
		t.Fatalf("Size = %d, want 2", tbl.Size())
	}
	fn := NewVMFunction(types.FunctionType{}, nil)
	if !tbl.Set(1, fn) {
		t.Fatal("Set in range should succeed")
	}
	if tbl.Set(2, fn) {
		t.Fatal("Set out of range should fail")
	}
	got, ok := tbl.Get(1)
	if !ok || got != fn {
		t.Fatal("Get(1) should return the stored function")
	}

	prev, ok := tbl.Grow(1, nil)
	if !ok || prev != 2 {
		t.Fatalf("Grow = (%d, %v), want (2, true)", prev, ok)
	}
	if prev, ok := tbl.Grow(1, nil); ok {
		t.Fatalf("Grow past maximum should fail, got prev %d", prev)
	}
}

func TestLinearMemory_GrowRelocates(t *testing.T) {
	two := types.Pages(2)
	mem, err := NewLinearMemory(types.MemoryType{Minimum: 1, Maximum: &two})
	if err != nil {
		t.Fatal(err)
	}
	if mem.SizePages() != 1 {
		t.Fatalf("SizePages = %d, want 1", mem.SizePages())
	}

	before := mem.Bytes()
	before[0] = 0xAB

	prev, ok := mem.Grow(1)
	if !ok || prev != 1 {
		t.Fatalf("Grow = (%d, %v), want (1, true)", prev, ok)
	}
	after := mem.Bytes()
	if len(after) != 2*types.PageSize {
		t.Fatalf("len(Bytes) = %d, want %d", len(after), 2*types.PageSize)
	}
	if after[0] != 0xAB {
		t.Fatal("growth must preserve contents")
	}

	if prev, ok := mem.Grow(1); ok {
		t.Fatalf("Grow past maximum should fail, got prev %d", prev)
	}
}

func TestLinearMemory_Shared(t *testing.T) {
	if _, err := NewLinearMemory(types.MemoryType{Minimum: 1, Shared: true}); err == nil {
		t.Fatal("shared memory without maximum should be rejected")
	}

	four := types.Pages(4)
	mem, err := NewLinearMemory(types.MemoryType{Minimum: 1, Maximum: &four, Shared: true})
	if err != nil {
		t.Fatal(err)
	}

	// Shared growth must not relocate: the byte written before Grow is
	// visible through the slice captured before Grow.
	before := mem.Bytes()
	prev, ok := mem.Grow(2)
	if !ok || prev != 1 {
		t.Fatalf("Grow = (%d, %v), want (1, true)", prev, ok)
	}
	mem.Bytes()[0] = 0x5A
	if before[0] != 0x5A {
		t.Fatal("shared growth relocated the backing storage")
	}
	if mem.SizePages() != 3 {
		t.Fatalf("SizePages = %d, want 3", mem.SizePages())
	}
}

func TestLinearMemory_Validation(t *testing.T) {
	one := types.Pages(1)
	if _, err := NewLinearMemory(types.MemoryType{Minimum: 2, Maximum: &one}); err == nil {
		t.Fatal("maximum below minimum should be rejected")
	}
	if _, err := NewLinearMemory(types.MemoryType{Minimum: types.MaxPages + 1}); err == nil {
		t.Fatal("minimum above the addressable limit should be rejected")
	}
	if !errors.Is(mustErr(t), mustErr(t)) {
		t.Fatal("validation errors should be comparable by phase and kind")
	}
}

func mustErr(t *testing.T) error {
	t.Helper()
	one := types.Pages(1)
	_, err := NewLinearMemory(types.MemoryType{Minimum: 2, Maximum: &one})
	if err == nil {
		t.Fatal("expected error")
	}
	return err
}

package externals

import (
	"testing"

	wasmerrors "github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

func TestGlobal_GetSet(t *testing.T) {
	ctx := store.NewContext(nil)

	g, err := NewGlobal(ctx, types.GlobalType{Type: types.I32, Mutable: true}, I32(-5))
	if err != nil {
		t.Fatalf("NewGlobal: %v", err)
	}

	v, err := g.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != types.I32 || v.I32() != -5 {
		t.Fatalf("Get = %v (%d), want i32 -5", v.Kind(), v.I32())
	}

	if err := g.Set(ctx, I32(99)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _ = g.Get(ctx)
	if v.I32() != 99 {
		t.Fatalf("after Set, Get = %d, want 99", v.I32())
	}
}

func TestGlobal_Immutable(t *testing.T) {
	ctx := store.NewContext(nil)
	g, err := NewGlobal(ctx, types.GlobalType{Type: types.F64}, F64(3.5))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Set(ctx, F64(4.5)); err == nil {
		t.Fatal("Set on an immutable global should fail")
	}
	v, _ := g.Get(ctx)
	if v.F64() != 3.5 {
		t.Fatal("failed Set must not change the value")
	}
}

func TestGlobal_KindMismatch(t *testing.T) {
	ctx := store.NewContext(nil)

	_, err := NewGlobal(ctx, types.GlobalType{Type: types.I64}, I32(1))
	if !wasmerrors.IsKind(err, wasmerrors.KindTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}

	g, err := NewGlobal(ctx, types.GlobalType{Type: types.I64, Mutable: true}, I64(1))
	if err != nil {
		t.Fatal(err)
	}
	err = g.Set(ctx, F32(1))
	if !wasmerrors.IsKind(err, wasmerrors.KindTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
}

func TestGlobal_RejectsReferenceTypes(t *testing.T) {
	ctx := store.NewContext(nil)
	if _, err := NewGlobal(ctx, types.GlobalType{Type: types.FuncRef}, FuncRefValue(nil)); err == nil {
		t.Fatal("funcref globals should be rejected")
	}
}

func TestGlobal_CrossContext(t *testing.T) {
	ctxA := store.NewContext(nil)
	ctxB := store.NewContext(nil)
	g, err := NewGlobal(ctxA, types.GlobalType{Type: types.I32, Mutable: true}, I32(0))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Get(ctxB); !wasmerrors.IsKind(err, wasmerrors.KindCrossContextUse) {
		t.Fatalf("expected cross_context_use, got %v", err)
	}
	if err := g.Set(ctxB, I32(1)); !wasmerrors.IsKind(err, wasmerrors.KindCrossContextUse) {
		t.Fatalf("expected cross_context_use, got %v", err)
	}
}

func TestValue_Encoding(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind types.ValType
	}{
		{"i32", I32(-1), types.I32},
		{"i64", I64(1 << 40), types.I64},
		{"f32", F32(1.25), types.F32},
		{"f64", F64(-0.5), types.F64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Kind() != tt.kind {
				t.Fatalf("Kind = %v, want %v", tt.v.Kind(), tt.kind)
			}
			rt := RawValue(tt.kind, tt.v.Raw())
			if rt.Raw() != tt.v.Raw() {
				t.Fatal("raw bits should round trip")
			}
		})
	}

	if I32(-1).I32() != -1 {
		t.Fatal("i32 sign lost")
	}
	if I64(-2).I64() != -2 {
		t.Fatal("i64 sign lost")
	}
	if F32(1.25).F32() != 1.25 {
		t.Fatal("f32 bits lost")
	}
	if F64(-0.5).F64() != -0.5 {
		t.Fatal("f64 bits lost")
	}
}

package externals

import (
	"math"

	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// Value is one WebAssembly value: a numeric scalar or a function reference.
// Numeric values are pure data; a funcref carries the Function object and
// therefore a context identity that must be pre-validated before the value
// is stored into shared state.
type Value struct {
	fn   *Function
	bits uint64
	kind types.ValType
}

// I32 creates an i32 value.
func I32(v int32) Value {
	return Value{kind: types.I32, bits: uint64(uint32(v))}
}

// I64 creates an i64 value.
func I64(v int64) Value {
	return Value{kind: types.I64, bits: uint64(v)}
}

// F32 creates an f32 value.
func F32(v float32) Value {
	return Value{kind: types.F32, bits: uint64(math.Float32bits(v))}
}

// F64 creates an f64 value.
func F64(v float64) Value {
	return Value{kind: types.F64, bits: math.Float64bits(v)}
}

// FuncRefValue creates a funcref value. A nil Function is the null funcref.
func FuncRefValue(f *Function) Value {
	return Value{kind: types.FuncRef, fn: f}
}

// RawValue reinterprets raw bits as a value of the given numeric kind.
func RawValue(kind types.ValType, bits uint64) Value {
	return Value{kind: kind, bits: bits}
}

// Kind returns the value's type.
func (v Value) Kind() types.ValType { return v.kind }

// I32 returns the value as an i32. The caller is responsible for checking
// Kind first; the bits are reinterpreted without validation.
func (v Value) I32() int32 { return int32(uint32(v.bits)) }

// I64 returns the value as an i64.
func (v Value) I64() int64 { return int64(v.bits) }

// F32 returns the value as an f32.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.bits)) }

// F64 returns the value as an f64.
func (v Value) F64() float64 { return math.Float64frombits(v.bits) }

// FuncRef returns the referenced function, nil for the null funcref.
func (v Value) FuncRef() *Function { return v.fn }

// Raw returns the value's bits in the raw calling convention.
func (v Value) Raw() uint64 { return v.bits }

// FromContext reports whether the value can be used with the given context.
// Numeric values belong to every context; a funcref belongs to the context
// that created its function.
func (v Value) FromContext(ctx *store.Context) bool {
	if v.kind != types.FuncRef {
		return true
	}
	if v.fn == nil {
		return true
	}
	return v.fn.FromContext(ctx)
}

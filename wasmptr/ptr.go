package wasmptr

import (
	"math"

	"github.com/wippyai/wasm-embed/errors"
)

// Plain constrains pointer element types to numeric types whose every
// bit pattern is a valid value. Aggregates and bool are excluded: they
// have padding or invalid representations that a guest could forge.
type Plain interface {
	uint8 | uint16 | uint32 | uint64 |
		int8 | int16 | int32 | int64 |
		float32 | float64
}

// Address is a marker for the index width of the memory a pointer
// addresses. Memory32 pointers are limited to 32-bit offsets, Memory64
// pointers to 64-bit offsets.
type Address interface {
	Memory32 | Memory64
}

// Memory32 marks pointers into a 32-bit indexed memory.
type Memory32 struct{}

// Memory64 marks pointers into a 64-bit indexed memory.
type Memory64 struct{}

// maxOffset reports the largest representable offset for the address
// width M.
func maxOffset[M Address]() uint64 {
	var m M
	if _, ok := any(m).(Memory32); ok {
		return math.MaxUint32
	}
	return math.MaxUint64
}

// sizeOf reports the encoded size of T in bytes.
func sizeOf[T Plain]() uint64 {
	var v T
	switch any(v).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	case uint32, int32, float32:
		return 4
	default:
		return 8
	}
}

// WasmPtr is a typed offset into guest linear memory. The zero value is
// the null pointer. A WasmPtr carries no reference to any memory; it is
// just an address, and stays valid across memory growth.
type WasmPtr[T Plain, M Address] struct {
	offset uint64
}

// New returns a pointer to the given byte offset.
func New[T Plain, M Address](offset uint64) WasmPtr[T, M] {
	return WasmPtr[T, M]{offset: offset}
}

// Null returns the null pointer, offset zero.
func Null[T Plain, M Address]() WasmPtr[T, M] {
	return WasmPtr[T, M]{}
}

// Offset reports the byte offset this pointer addresses.
func (p WasmPtr[T, M]) Offset() uint64 {
	return p.offset
}

// IsNull reports whether the pointer is at offset zero.
func (p WasmPtr[T, M]) IsNull() bool {
	return p.offset == 0
}

// Add returns a pointer advanced by n elements of T. The byte delta and
// the resulting offset are both checked against the address width; any
// overflow fails instead of wrapping.
func (p WasmPtr[T, M]) Add(n uint64) (WasmPtr[T, M], error) {
	delta, ok := mulChecked(n, sizeOf[T]())
	if !ok {
		return WasmPtr[T, M]{}, errors.Overflow(errors.PhaseMemory)
	}
	off, ok := addChecked(p.offset, delta)
	if !ok || off > maxOffset[M]() {
		return WasmPtr[T, M]{}, errors.Overflow(errors.PhaseMemory)
	}
	return WasmPtr[T, M]{offset: off}, nil
}

// Sub returns a pointer moved back by n elements of T. Moving past
// offset zero fails with Overflow.
func (p WasmPtr[T, M]) Sub(n uint64) (WasmPtr[T, M], error) {
	delta, ok := mulChecked(n, sizeOf[T]())
	if !ok || delta > p.offset {
		return WasmPtr[T, M]{}, errors.Overflow(errors.PhaseMemory)
	}
	return WasmPtr[T, M]{offset: p.offset - delta}, nil
}

// Cast reinterprets a pointer as addressing elements of type U at the
// same byte offset. No alignment or size relationship between T and U
// is required.
func Cast[U Plain, T Plain, M Address](p WasmPtr[T, M]) WasmPtr[U, M] {
	return WasmPtr[U, M]{offset: p.offset}
}

func mulChecked(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

func addChecked(a, b uint64) (uint64, bool) {
	r := a + b
	if r < a {
		return 0, false
	}
	return r, true
}

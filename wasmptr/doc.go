// Package wasmptr provides typed pointers into guest linear memory.
//
// A WasmPtr[T, M] is an offset into a memory view, parameterized by the
// element type T and the address width M (Memory32 or Memory64). Pointer
// arithmetic is always expressed in units of T and is checked: any
// computation that would exceed the address width fails with an Overflow
// error instead of wrapping.
//
// Reads and writes go through a Ref or a Slice, both of which delegate
// bounds checking to the underlying externals.MemoryView. The element
// type is constrained to plain numeric types, where every bit pattern is
// a valid value, so decoding can never observe an invalid representation.
//
// Layout follows the WebAssembly convention: all values are encoded
// little-endian at their natural size, with no padding.
package wasmptr

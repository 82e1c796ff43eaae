package wasmptr

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
)

// Ref binds a pointer to a memory view so it can be read and written.
// The view's bounds are checked on every access.
type Ref[T Plain, M Address] struct {
	view *externals.MemoryView
	ptr  WasmPtr[T, M]
}

// Deref binds the pointer to a view of the memory it addresses.
func (p WasmPtr[T, M]) Deref(view *externals.MemoryView) Ref[T, M] {
	return Ref[T, M]{view: view, ptr: p}
}

// Ptr returns the pointer this reference was derived from.
func (r Ref[T, M]) Ptr() WasmPtr[T, M] {
	return r.ptr
}

// Read decodes one T from memory at the pointer's offset.
func (r Ref[T, M]) Read() (T, error) {
	var zero T
	if r.ptr.offset > maxOffset[M]() {
		return zero, errors.Overflow(errors.PhaseMemory)
	}
	var buf [8]byte
	b := buf[:sizeOf[T]()]
	if err := r.view.Read(r.ptr.offset, b); err != nil {
		return zero, err
	}
	return decode[T](b), nil
}

// Write encodes v into memory at the pointer's offset.
func (r Ref[T, M]) Write(v T) error {
	if r.ptr.offset > maxOffset[M]() {
		return errors.Overflow(errors.PhaseMemory)
	}
	var buf [8]byte
	b := buf[:sizeOf[T]()]
	encode(b, v)
	return r.view.Write(r.ptr.offset, b)
}

func decode[T Plain](b []byte) T {
	var v T
	switch p := any(&v).(type) {
	case *uint8:
		*p = b[0]
	case *int8:
		*p = int8(b[0])
	case *uint16:
		*p = binary.LittleEndian.Uint16(b)
	case *int16:
		*p = int16(binary.LittleEndian.Uint16(b))
	case *uint32:
		*p = binary.LittleEndian.Uint32(b)
	case *int32:
		*p = int32(binary.LittleEndian.Uint32(b))
	case *uint64:
		*p = binary.LittleEndian.Uint64(b)
	case *int64:
		*p = int64(binary.LittleEndian.Uint64(b))
	case *float32:
		*p = math.Float32frombits(binary.LittleEndian.Uint32(b))
	case *float64:
		*p = math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return v
}

func encode[T Plain](b []byte, v T) {
	switch v := any(v).(type) {
	case uint8:
		b[0] = v
	case int8:
		b[0] = byte(v)
	case uint16:
		binary.LittleEndian.PutUint16(b, v)
	case int16:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case uint32:
		binary.LittleEndian.PutUint32(b, v)
	case int32:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case uint64:
		binary.LittleEndian.PutUint64(b, v)
	case int64:
		binary.LittleEndian.PutUint64(b, uint64(v))
	case float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	case float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	}
}

package wasmptr

import (
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
)

// Slice is a typed window of length elements starting at a pointer.
// Construction checks only that the total byte span is representable;
// memory bounds are checked lazily, when elements are actually read or
// written, so a slice may legally describe a range the memory does not
// (yet) cover.
type Slice[T Plain, M Address] struct {
	view   *externals.MemoryView
	ptr    WasmPtr[T, M]
	length uint64
}

// Slice returns a window of length elements of T starting at p. Fails
// with Overflow if the byte span would exceed the address width.
func (p WasmPtr[T, M]) Slice(view *externals.MemoryView, length uint64) (Slice[T, M], error) {
	byteLen, ok := mulChecked(length, sizeOf[T]())
	if !ok {
		return Slice[T, M]{}, errors.Overflow(errors.PhaseMemory)
	}
	end, ok := addChecked(p.offset, byteLen)
	if !ok || end > maxOffset[M]() {
		return Slice[T, M]{}, errors.Overflow(errors.PhaseMemory)
	}
	return Slice[T, M]{view: view, ptr: p, length: length}, nil
}

// Len reports the number of elements in the slice.
func (s Slice[T, M]) Len() uint64 {
	return s.length
}

// checkSpan verifies the slice's full byte range against the view before
// anything is allocated for it. The span arithmetic was validated when the
// slice was built, so it cannot overflow here.
func (s Slice[T, M]) checkSpan(size uint64) error {
	end := s.ptr.offset + s.length*size
	if end > s.view.Len() {
		return errors.HeapOutOfBounds(errors.PhaseMemory, end, s.view.Len())
	}
	return nil
}

// Index returns a reference to element i.
func (s Slice[T, M]) Index(i uint64) (Ref[T, M], error) {
	if i >= s.length {
		return Ref[T, M]{}, errors.Generic(errors.PhaseMemory,
			"slice index %d out of range for length %d", i, s.length)
	}
	// The span was validated at construction, so this cannot overflow.
	p, err := s.ptr.Add(i)
	if err != nil {
		return Ref[T, M]{}, err
	}
	return p.Deref(s.view), nil
}

// Read decodes element i.
func (s Slice[T, M]) Read(i uint64) (T, error) {
	var zero T
	ref, err := s.Index(i)
	if err != nil {
		return zero, err
	}
	return ref.Read()
}

// Write encodes v into element i.
func (s Slice[T, M]) Write(i uint64, v T) error {
	ref, err := s.Index(i)
	if err != nil {
		return err
	}
	return ref.Write(v)
}

// ReadAll decodes every element into a fresh Go slice. The whole byte
// range is bounds-checked in one shot, before any allocation, so an
// oversized 64-bit span cannot exhaust host memory.
func (s Slice[T, M]) ReadAll() ([]T, error) {
	size := sizeOf[T]()
	if err := s.checkSpan(size); err != nil {
		return nil, err
	}
	buf := make([]byte, s.length*size)
	if err := s.view.Read(s.ptr.offset, buf); err != nil {
		return nil, err
	}
	out := make([]T, s.length)
	for i := range out {
		out[i] = decode[T](buf[uint64(i)*size : uint64(i+1)*size])
	}
	return out, nil
}

// WriteAll encodes vs into the slice. The number of values must match
// the slice length exactly.
func (s Slice[T, M]) WriteAll(vs []T) error {
	if uint64(len(vs)) != s.length {
		return errors.Generic(errors.PhaseMemory,
			"cannot write %d values into slice of length %d", len(vs), s.length)
	}
	size := sizeOf[T]()
	if err := s.checkSpan(size); err != nil {
		return err
	}
	buf := make([]byte, s.length*size)
	for i, v := range vs {
		encode(buf[uint64(i)*size:uint64(i+1)*size], v)
	}
	return s.view.Write(s.ptr.offset, buf)
}

// Sub returns a window of length elements starting at element start
// within s.
func (s Slice[T, M]) Sub(start, length uint64) (Slice[T, M], error) {
	end, ok := addChecked(start, length)
	if !ok || end > s.length {
		return Slice[T, M]{}, errors.Generic(errors.PhaseMemory,
			"subslice [%d, %d) out of range for length %d", start, start+length, s.length)
	}
	p, err := s.ptr.Add(start)
	if err != nil {
		return Slice[T, M]{}, err
	}
	return p.Slice(s.view, length)
}

// ReadUntil reads elements one at a time starting at p, stopping at the
// first element for which stop returns true. The stop element itself is
// not included. Each step is bounds-checked, so a missing terminator
// fails at the memory boundary rather than scanning past it.
func (p WasmPtr[T, M]) ReadUntil(view *externals.MemoryView, stop func(T) bool) ([]T, error) {
	var out []T
	cur := p
	for {
		v, err := cur.Deref(view).Read()
		if err != nil {
			return nil, err
		}
		if stop(v) {
			return out, nil
		}
		out = append(out, v)
		cur, err = cur.Add(1)
		if err != nil {
			return nil, err
		}
	}
}

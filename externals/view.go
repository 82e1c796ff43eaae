package externals

import (
	"math"

	"github.com/wippyai/wasm-embed/errors"
)

// MemoryView is a detached view over a memory's committed bytes. It is valid
// for the lifetime of the Memory it came from but is stale immediately after
// any Grow: it keeps the bounds it was created with, so an access past them
// fails with heap_out_of_bounds instead of reaching relocated storage.
type MemoryView struct {
	data []byte
}

// Len returns the view's size in bytes.
func (v *MemoryView) Len() uint64 {
	return uint64(len(v.data))
}

// Read copies exactly len(out) bytes at offset into out, or fails without
// touching out.
func (v *MemoryView) Read(offset uint64, out []byte) error {
	return readAt(v.data, offset, out)
}

// Write copies all of data to offset, or fails without touching the memory.
func (v *MemoryView) Write(offset uint64, data []byte) error {
	return writeAt(v.data, offset, data)
}

// checkRange validates [offset, offset+length) against a buffer of the given
// size using non-wrapping arithmetic in the memory's 32-bit native width.
// Validation is complete before any caller copies a byte.
func checkRange(offset uint64, length, size int) (end uint64, err error) {
	if offset > math.MaxUint32 || uint64(length) > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseMemory)
	}
	end = offset + uint64(length)
	if end > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseMemory)
	}
	if end > uint64(size) {
		return 0, errors.HeapOutOfBounds(errors.PhaseMemory, end, uint64(size))
	}
	return end, nil
}

func readAt(data []byte, offset uint64, out []byte) error {
	end, err := checkRange(offset, len(out), len(data))
	if err != nil {
		return err
	}
	copy(out, data[offset:end])
	return nil
}

func writeAt(data []byte, offset uint64, src []byte) error {
	end, err := checkRange(offset, len(src), len(data))
	if err != nil {
		return err
	}
	copy(data[offset:end], src)
	return nil
}

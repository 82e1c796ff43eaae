package store

import (
	wasmembed "github.com/wippyai/wasm-embed"
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/types"
)

// NewLinearMemory allocates host-owned backing storage for the given type,
// committed to the declared minimum.
//
// Shared memories require a maximum and are reserved up front so growth
// never relocates the storage: a guest thread may be reading the bytes while
// the host grows, and relocation under a reader is exactly the unsafety the
// shared contract rules out. Unshared memories reallocate on growth, which
// is why views must be re-fetched after Grow.
func NewLinearMemory(ty types.MemoryType) (wasmembed.LinearMemory, error) {
	if ty.Minimum > types.MaxPages {
		return nil, errors.Generic(errors.PhaseMemory,
			"minimum %d pages exceeds the addressable limit of %d", ty.Minimum, types.MaxPages)
	}
	max := uint32(types.MaxPages)
	if ty.Maximum != nil {
		if *ty.Maximum > types.MaxPages {
			return nil, errors.Generic(errors.PhaseMemory,
				"maximum %d pages exceeds the addressable limit of %d", *ty.Maximum, types.MaxPages)
		}
		if *ty.Maximum < ty.Minimum {
			return nil, errors.Generic(errors.PhaseMemory,
				"maximum %d pages is below minimum %d", *ty.Maximum, ty.Minimum)
		}
		max = uint32(*ty.Maximum)
	}

	if ty.Shared {
		if ty.Maximum == nil {
			return nil, errors.Generic(errors.PhaseMemory, "shared memory requires a maximum")
		}
		reserved := make([]byte, uint64(max)*types.PageSize)
		return &sharedMemory{data: reserved[:ty.Minimum.Bytes()], max: max}, nil
	}

	return &heapMemory{
		data: make([]byte, ty.Minimum.Bytes()),
		max:  max,
	}, nil
}

// heapMemory is the default unshared backend. Grow reallocates.
type heapMemory struct {
	data []byte
	max  uint32
}

func (m *heapMemory) Bytes() []byte { return m.data }

func (m *heapMemory) SizePages() uint32 {
	return uint32(uint64(len(m.data)) / types.PageSize)
}

func (m *heapMemory) Grow(delta uint32) (uint32, bool) {
	prev := m.SizePages()
	if delta == 0 {
		return prev, true
	}
	next := uint64(prev) + uint64(delta)
	if next > uint64(m.max) {
		return prev, false
	}
	grown := make([]byte, next*types.PageSize)
	copy(grown, m.data)
	m.data = grown
	return prev, true
}

// sharedMemory never relocates; growth re-slices the reserved block.
type sharedMemory struct {
	data []byte
	max  uint32
}

func (m *sharedMemory) Bytes() []byte { return m.data }

func (m *sharedMemory) SizePages() uint32 {
	return uint32(uint64(len(m.data)) / types.PageSize)
}

func (m *sharedMemory) Grow(delta uint32) (uint32, bool) {
	prev := m.SizePages()
	if delta == 0 {
		return prev, true
	}
	next := uint64(prev) + uint64(delta)
	if next > uint64(m.max) {
		return prev, false
	}
	m.data = m.data[:next*types.PageSize]
	return prev, true
}

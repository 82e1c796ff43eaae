package externals

import (
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// Memory is a WebAssembly linear memory owned by a Context: a growable,
// page-granular byte buffer addressable by both host and guest.
//
// Read and Write are safe to call while the guest concurrently mutates the
// same bytes. The values observed may be torn; the access itself never is.
type Memory struct {
	handle store.Handle[*store.VMMemory]
}

// NewMemory creates a host memory of the given type, committed to its
// declared minimum.
func NewMemory(ctx *store.Context, ty types.MemoryType) (*Memory, error) {
	lin, err := store.NewLinearMemory(ty)
	if err != nil {
		return nil, err
	}
	return memoryFromVM(ctx, store.NewVMMemory(lin, ty)), nil
}

// memoryFromVM places a fresh VM memory into the context's arena.
func memoryFromVM(ctx *store.Context, vm *store.VMMemory) *Memory {
	return &Memory{handle: store.NewHandle(ctx, ctx.Memories(), vm)}
}

// memoryFromInternal materializes a wire-level handle into a public Memory,
// supplying the context identity at this point.
func memoryFromInternal(ctx *store.Context, h store.InternalHandle[*store.VMMemory]) *Memory {
	return &Memory{handle: store.FromInternal(ctx.ID(), h)}
}

func (m *Memory) vm(ctx *store.Context) (*store.VMMemory, error) {
	return m.handle.Get(ctx, ctx.Memories())
}

// Type returns the memory's declared type.
func (m *Memory) Type(ctx *store.Context) (types.MemoryType, error) {
	vm, err := m.vm(ctx)
	if err != nil {
		return types.MemoryType{}, err
	}
	return vm.Type, nil
}

// Size returns the current committed size in pages.
func (m *Memory) Size(ctx *store.Context) (types.Pages, error) {
	vm, err := m.vm(ctx)
	if err != nil {
		return 0, err
	}
	return types.Pages(vm.Memory.SizePages()), nil
}

// DataSize returns the current committed size in bytes.
func (m *Memory) DataSize(ctx *store.Context) (uint64, error) {
	vm, err := m.vm(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(len(vm.Memory.Bytes())), nil
}

// Grow extends the memory by delta pages and returns the size before the
// call. On failure the error carries that size and the requested delta.
// Any view obtained before a successful Grow is stale afterward.
func (m *Memory) Grow(ctx *store.Context, delta types.Pages) (types.Pages, error) {
	vm, err := m.vm(ctx)
	if err != nil {
		return 0, err
	}
	prev, ok := vm.Memory.Grow(uint32(delta))
	if !ok {
		return 0, errors.CouldNotGrow(prev, uint32(delta))
	}
	return types.Pages(prev), nil
}

// Read copies exactly len(out) bytes starting at offset into out. The range
// is fully validated before any byte is copied: out is untouched on failure.
func (m *Memory) Read(ctx *store.Context, offset uint64, out []byte) error {
	vm, err := m.vm(ctx)
	if err != nil {
		return err
	}
	return readAt(vm.Memory.Bytes(), offset, out)
}

// ReadBytes reads length bytes starting at offset into a fresh slice.
func (m *Memory) ReadBytes(ctx *store.Context, offset uint64, length uint32) ([]byte, error) {
	out := make([]byte, length)
	if err := m.Read(ctx, offset, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Write copies all of data to the memory starting at offset. The range is
// fully validated before any byte is copied: memory is untouched on failure.
func (m *Memory) Write(ctx *store.Context, offset uint64, data []byte) error {
	vm, err := m.vm(ctx)
	if err != nil {
		return err
	}
	return writeAt(vm.Memory.Bytes(), offset, data)
}

// View returns a detached view over the memory's current bytes, usable
// without the Memory object. The view is stale immediately after any Grow;
// access through a stale view stays within the old bounds and fails closed
// beyond them.
func (m *Memory) View(ctx *store.Context) (*MemoryView, error) {
	vm, err := m.vm(ctx)
	if err != nil {
		return nil, err
	}
	return &MemoryView{data: vm.Memory.Bytes()}, nil
}

// FromContext reports whether this memory was created by ctx.
func (m *Memory) FromContext(ctx *store.Context) bool {
	return m.handle.FromContext(ctx)
}

// AsExtern wraps the memory in the extern union.
func (m *Memory) AsExtern() Extern {
	return Extern{kind: types.ExternMemory, memory: m}
}

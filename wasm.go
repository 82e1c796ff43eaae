package wasmembed

// LinearMemory is the backing storage for one WebAssembly linear memory.
// Implementations are provided by the store (host-allocated memories) and by
// engine adapters (memories owned by an instantiated module).
type LinearMemory interface {
	// Bytes returns the currently committed bytes. The returned slice is a
	// view, not a copy; it is invalidated by Grow and must be re-fetched
	// after any growth.
	Bytes() []byte

	// SizePages returns the current committed size in 64 KiB pages.
	SizePages() uint32

	// Grow extends the memory by delta pages and returns the size in pages
	// before the call. ok is false when the growth would exceed the
	// memory's declared maximum or the allocator's limits.
	Grow(delta uint32) (prev uint32, ok bool)
}

// Callable is the raw calling convention for functions crossing the
// embedding boundary. Arguments and results are value bits, one slot per
// wasm value, in signature order. Typed conversion is layered above by
// the externals package.
type Callable func(args []uint64) (results []uint64, err error)

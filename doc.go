// Package wasmembed provides the host-side embedding boundary of a
// WebAssembly runtime: creation and ownership of wasm objects (memories,
// tables, globals, functions), safe handle discipline and bounds-checked
// linear-memory access.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmembed/      Root package with the LinearMemory and Callable interfaces
//	├── types/      Pages, value types and the four extern type descriptors
//	├── store/      Context (one embedding session), arenas, handles, exports
//	├── externals/  Public Memory, Table, Global, Function and Extern objects
//	├── wasmptr/    Typed, bounds-checked pointers into linear memory
//	├── imports/    Namespace -> name -> extern resolution for instantiation
//	├── engine/     wazero adapter: compilation, instantiation, export lifting
//	├── wasi/       Minimal WASI-style consumer of the import object
//	└── errors/     Structured error types for debugging
//
// # Object Model
//
// Every wasm object a host creates is owned by exactly one Context. The
// Context's arenas are the sole owners; the public objects (externals.Memory
// and friends) hold handles tagged with the owning Context's identity. Every
// operation takes the Context and validates the tag before touching the
// arena, so an object from one session can never read or write another
// session's state.
//
// Linear memory is addressed through two checked layers. externals.Memory
// performs whole-range bounds checks with overflow-safe arithmetic; the
// wasmptr package adds a typed pointer on top for element-wise access,
// slices and string reads.
//
// # Quick Start
//
// Create a context, a memory, and read guest data through a typed pointer:
//
//	ctx := store.NewContext(nil)
//	defer ctx.Close()
//
//	mem, err := externals.NewMemory(ctx, types.MemoryType{Minimum: 1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	view, _ := mem.View(ctx)
//	p := wasmptr.New[uint32, wasmptr.Memory32](16)
//	n, err := p.Deref(view).Read()
//
// # Thread Safety
//
// A Context and the objects it owns are logically single-writer: concurrent
// mutation of the same object must be serialized by the caller. Memories
// created with Shared set are the exception; their bytes may be mutated by a
// guest thread while the host reads, with torn values allowed but bounds
// always rechecked per call.
//
// # Memory Model
//
// WASM linear memory can only grow, never shrink. Growth may relocate the
// backing storage: any view obtained before a Grow call is stale afterward
// and must be re-fetched. Stale views keep their original bounds, so access
// through one fails closed rather than touching relocated storage.
package wasmembed

package store

import (
	wasmembed "github.com/wippyai/wasm-embed"
	"github.com/wippyai/wasm-embed/types"
)

// VMMemory is an arena-owned linear memory: the backing resource plus its
// declared type.
type VMMemory struct {
	Memory wasmembed.LinearMemory
	Type   types.MemoryType
}

// NewVMMemory wraps a backing resource and its declared type.
func NewVMMemory(mem wasmembed.LinearMemory, ty types.MemoryType) *VMMemory {
	return &VMMemory{Memory: mem, Type: ty}
}

// VMFunction is an arena-owned function: a callable plus its declared
// signature. The callable is the function's identity.
type VMFunction struct {
	Callable wasmembed.Callable
	Type     types.FunctionType
}

// NewVMFunction wraps a callable and its declared signature.
func NewVMFunction(ty types.FunctionType, callable wasmembed.Callable) *VMFunction {
	return &VMFunction{Type: ty, Callable: callable}
}

// VMGlobal is an arena-owned global holding its value as raw bits. Encoding
// between typed values and bits is the externals layer's job.
type VMGlobal struct {
	Type types.GlobalType
	raw  uint64
}

// NewVMGlobal creates a global with an initial raw value.
func NewVMGlobal(ty types.GlobalType, raw uint64) *VMGlobal {
	return &VMGlobal{Type: ty, raw: raw}
}

// Raw returns the global's value bits.
func (g *VMGlobal) Raw() uint64 { return g.raw }

// SetRaw replaces the global's value bits. Mutability is enforced by the
// externals layer.
func (g *VMGlobal) SetRaw(raw uint64) { g.raw = raw }

// VMTable is an arena-owned table of function references. A nil element is
// a null funcref.
type VMTable struct {
	Type  types.TableType
	elems []*VMFunction
}

// NewVMTable creates a table sized to its declared minimum, with every
// element set to init.
func NewVMTable(ty types.TableType, init *VMFunction) *VMTable {
	elems := make([]*VMFunction, ty.Minimum)
	for i := range elems {
		elems[i] = init
	}
	return &VMTable{Type: ty, elems: elems}
}

// Size returns the current number of elements.
func (t *VMTable) Size() uint32 {
	return uint32(len(t.elems))
}

// Get returns the element at index, or false when index is out of range.
func (t *VMTable) Get(index uint32) (*VMFunction, bool) {
	if int(index) >= len(t.elems) {
		return nil, false
	}
	return t.elems[index], true
}

// Set replaces the element at index. Returns false when index is out of
// range.
func (t *VMTable) Set(index uint32, fn *VMFunction) bool {
	if int(index) >= len(t.elems) {
		return false
	}
	t.elems[index] = fn
	return true
}

// Grow extends the table by delta elements initialized to init, returning
// the size before the call. ok is false when the declared maximum would be
// exceeded.
func (t *VMTable) Grow(delta uint32, init *VMFunction) (prev uint32, ok bool) {
	prev = t.Size()
	next := uint64(prev) + uint64(delta)
	if t.Type.Maximum != nil && next > uint64(*t.Type.Maximum) {
		return prev, false
	}
	for i := uint32(0); i < delta; i++ {
		t.elems = append(t.elems, init)
	}
	return prev, true
}

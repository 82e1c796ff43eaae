package store

import "github.com/wippyai/wasm-embed/types"

// Export is the value of an export passed from one instance to another: a
// closed union over the four extern kinds, each case wrapping the internal
// handle the owning arena produced for it. Exports are context-naive by
// construction; the code that materializes them into public externs supplies
// the context identity at that point.
type Export struct {
	kind     types.ExternKind
	function InternalHandle[*VMFunction]
	table    InternalHandle[*VMTable]
	memory   InternalHandle[*VMMemory]
	global   InternalHandle[*VMGlobal]
}

// ExportFunction wraps a function handle.
func ExportFunction(h InternalHandle[*VMFunction]) Export {
	return Export{kind: types.ExternFunction, function: h}
}

// ExportTable wraps a table handle.
func ExportTable(h InternalHandle[*VMTable]) Export {
	return Export{kind: types.ExternTable, table: h}
}

// ExportMemory wraps a memory handle.
func ExportMemory(h InternalHandle[*VMMemory]) Export {
	return Export{kind: types.ExternMemory, memory: h}
}

// ExportGlobal wraps a global handle.
func ExportGlobal(h InternalHandle[*VMGlobal]) Export {
	return Export{kind: types.ExternGlobal, global: h}
}

// Kind returns which case the export holds.
func (e Export) Kind() types.ExternKind { return e.kind }

// Function returns the function handle, or false for other kinds.
func (e Export) Function() (InternalHandle[*VMFunction], bool) {
	return e.function, e.kind == types.ExternFunction
}

// Table returns the table handle, or false for other kinds.
func (e Export) Table() (InternalHandle[*VMTable], bool) {
	return e.table, e.kind == types.ExternTable
}

// Memory returns the memory handle, or false for other kinds.
func (e Export) Memory() (InternalHandle[*VMMemory], bool) {
	return e.memory, e.kind == types.ExternMemory
}

// Global returns the global handle, or false for other kinds.
func (e Export) Global() (InternalHandle[*VMGlobal], bool) {
	return e.global, e.kind == types.ExternGlobal
}

package types

import "strings"

// ValType represents a WebAssembly value type.
type ValType byte

const (
	I32 ValType = iota
	I64
	F32
	F64
	FuncRef
	ExternRef
)

// String returns the WAT name of the value type.
func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case FuncRef:
		return "funcref"
	case ExternRef:
		return "externref"
	default:
		return "unknown"
	}
}

// ExternKind identifies one of the four WebAssembly external kinds.
type ExternKind byte

const (
	// ExternInvalid is the zero value so that an empty Extern or Export
	// is distinguishable from one holding a function.
	ExternInvalid ExternKind = iota
	ExternFunction
	ExternTable
	ExternMemory
	ExternGlobal
)

// String returns the kind name as it appears in a module's import section.
func (k ExternKind) String() string {
	switch k {
	case ExternFunction:
		return "function"
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ExternType is the declared type of an extern: exactly one of
// FunctionType, TableType, MemoryType or GlobalType.
type ExternType interface {
	ExternKind() ExternKind
}

// FunctionType describes the signature of a WebAssembly function.
type FunctionType struct {
	Params  []ValType
	Results []ValType
}

// ExternKind implements ExternType.
func (FunctionType) ExternKind() ExternKind { return ExternFunction }

// String returns the signature as "[i32 i32] -> [i32]".
func (t FunctionType) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range t.Params {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.String())
	}
	b.WriteString("] -> [")
	for i, r := range t.Results {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.String())
	}
	b.WriteByte(']')
	return b.String()
}

// MemoryType describes the limits of a linear memory.
// Maximum is nil when the memory declares no upper bound.
type MemoryType struct {
	Maximum *Pages
	Minimum Pages
	Shared  bool
}

// ExternKind implements ExternType.
func (MemoryType) ExternKind() ExternKind { return ExternMemory }

// NewMemoryType builds a MemoryType. A nil maximum means unbounded.
func NewMemoryType(minimum Pages, maximum *Pages, shared bool) MemoryType {
	return MemoryType{Minimum: minimum, Maximum: maximum, Shared: shared}
}

// TableType describes the element type and limits of a table.
type TableType struct {
	Maximum *uint32
	Minimum uint32
	Elem    ValType
}

// ExternKind implements ExternType.
func (TableType) ExternKind() ExternKind { return ExternTable }

// GlobalType describes the value type and mutability of a global.
type GlobalType struct {
	Type    ValType
	Mutable bool
}

// ExternKind implements ExternType.
func (GlobalType) ExternKind() ExternKind { return ExternGlobal }

// ImportType is one entry of a module's import section, in declaration order.
type ImportType struct {
	Type   ExternType
	Module string
	Name   string
}

// ExportType is one entry of a module's export section.
type ExportType struct {
	Type ExternType
	Name string
}

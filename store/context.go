package store

import "sync/atomic"

// ContextID is the opaque identity of one embedding session. IDs are
// assigned monotonically and never reused, so two IDs are equal iff they
// denote the same Context instance.
type ContextID uint64

var contextIDs atomic.Uint64

// Context is one embedding session. It exclusively owns every VM extern
// object created within it, one arena per extern kind. A Context is not
// internally synchronized; concurrent mutation must be serialized by the
// caller.
type Context struct {
	data      any
	memories  Arena[*VMMemory]
	tables    Arena[*VMTable]
	globals   Arena[*VMGlobal]
	functions Arena[*VMFunction]
	id        ContextID
	closed    bool
}

// NewContext creates a new session with a fresh identity. data is arbitrary
// host state retrievable with Data.
func NewContext(data any) *Context {
	return &Context{
		id:   ContextID(contextIDs.Add(1)),
		data: data,
	}
}

// ID returns the context's identity.
func (c *Context) ID() ContextID { return c.id }

// Data returns the host data associated with the context.
func (c *Context) Data() any { return c.data }

// SetData replaces the host data associated with the context.
func (c *Context) SetData(data any) { c.data = data }

// Memories returns the arena owning the context's memories.
func (c *Context) Memories() *Arena[*VMMemory] { return &c.memories }

// Tables returns the arena owning the context's tables.
func (c *Context) Tables() *Arena[*VMTable] { return &c.tables }

// Globals returns the arena owning the context's globals.
func (c *Context) Globals() *Arena[*VMGlobal] { return &c.globals }

// Functions returns the arena owning the context's functions.
func (c *Context) Functions() *Arena[*VMFunction] { return &c.functions }

// Close destroys the context's arenas. All handles into the context become
// dangling at once; dereferencing one afterwards fails with invalid_handle.
func (c *Context) Close() {
	c.closed = true
	c.memories = Arena[*VMMemory]{}
	c.tables = Arena[*VMTable]{}
	c.globals = Arena[*VMGlobal]{}
	c.functions = Arena[*VMFunction]{}
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool { return c.closed }

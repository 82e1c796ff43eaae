package store

import "github.com/wippyai/wasm-embed/errors"

// InternalHandle is a lightweight, context-naive reference to an arena slot.
// It appears inside the wire-level Export representation; code materializing
// it into the public API must promote it with FromInternal, supplying the
// owning context's identity at that point.
type InternalHandle[T any] struct {
	index uint32
}

// NewInternalHandle inserts v into the arena and returns a handle to it.
func NewInternalHandle[T any](a *Arena[T], v T) InternalHandle[T] {
	return InternalHandle[T]{index: a.Insert(v)}
}

// Index returns the arena index the handle refers to.
func (h InternalHandle[T]) Index() uint32 { return h.index }

// Get dereferences the handle against the given arena.
func (h InternalHandle[T]) Get(a *Arena[T]) (T, error) {
	return a.Get(h.index)
}

// Handle references an arena slot qualified by the identity of the owning
// Context. Handles never own their slot; destroying the Context invalidates
// them all at once.
type Handle[T any] struct {
	internal InternalHandle[T]
	ctxID    ContextID
}

// NewHandle inserts v into the arena and returns a handle tagged with ctx's
// identity. The arena must be one of ctx's own arenas.
func NewHandle[T any](ctx *Context, a *Arena[T], v T) Handle[T] {
	return Handle[T]{
		internal: NewInternalHandle(a, v),
		ctxID:    ctx.id,
	}
}

// FromInternal promotes an internal handle to a public Handle. This is the
// only legal way to perform the conversion; id must be the identity of the
// Context whose arena produced the internal handle.
func FromInternal[T any](id ContextID, internal InternalHandle[T]) Handle[T] {
	return Handle[T]{internal: internal, ctxID: id}
}

// ContextID returns the identity of the owning context.
func (h Handle[T]) ContextID() ContextID { return h.ctxID }

// Internal returns the context-naive form of the handle.
func (h Handle[T]) Internal() InternalHandle[T] { return h.internal }

// FromContext reports whether the handle was created by ctx. Callers that
// store values into shared state (table set, global set) must pre-validate
// with this before mutating.
func (h Handle[T]) FromContext(ctx *Context) bool {
	return h.ctxID == ctx.id
}

// Get dereferences the handle. The context identity is compared before any
// arena indexing occurs; a foreign context yields cross_context_use and a
// closed context yields invalid_handle.
func (h Handle[T]) Get(ctx *Context, a *Arena[T]) (T, error) {
	var zero T
	if h.ctxID != ctx.id {
		return zero, errors.CrossContextUse(errors.PhaseStore, "handle")
	}
	if ctx.closed {
		return zero, errors.InvalidHandle("context %d is closed", ctx.id)
	}
	return h.internal.Get(a)
}

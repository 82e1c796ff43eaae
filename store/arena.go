package store

import "github.com/wippyai/wasm-embed/errors"

// Arena is a growable, insertion-ordered collection of owned VM objects,
// keyed by index. The arena is the sole owner of its values; handles only
// reference slots by index.
type Arena[T any] struct {
	items []T
}

// Insert appends a value and returns its index. Insert never fails.
func (a *Arena[T]) Insert(v T) uint32 {
	idx := uint32(len(a.items))
	a.items = append(a.items, v)
	return idx
}

// Get retrieves a value by index. An out-of-range index is a programmer
// error under correct handle discipline and yields an invalid_handle error.
func (a *Arena[T]) Get(idx uint32) (T, error) {
	if int(idx) >= len(a.items) {
		var zero T
		return zero, errors.InvalidHandle("arena index %d out of range (len %d)", idx, len(a.items))
	}
	return a.items[idx], nil
}

// Len returns the number of values in the arena.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Package errors provides structured error types for the wasm-embed library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Kind set is the fixed taxonomy of the embedding boundary:
// bounds and overflow failures from memory access, growth failures, context
// identity violations, extern kind mismatches and link failures.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMemory, errors.KindHeapOutOfBounds).
//		Detail("read of %d bytes at offset %d past committed size", n, off).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(errors.PhaseMemory)
//	err := errors.CouldNotGrow(2, 1)
//	err := errors.UnknownImport("env", "missing_fn", "function")
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when their Phase and Kind agree;
// use IsKind to match on Kind alone.
package errors

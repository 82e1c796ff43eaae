package wasmptr

import (
	"unicode/utf8"

	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
)

// ReadString reads length bytes at p and decodes them as UTF-8. Invalid
// UTF-8 fails with NonUTF8String.
func ReadString[M Address](view *externals.MemoryView, p WasmPtr[uint8, M], length uint64) (string, error) {
	s, err := p.Slice(view, length)
	if err != nil {
		return "", err
	}
	b, err := s.ReadAll()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.NonUTF8String(errors.PhaseMemory)
	}
	return string(b), nil
}

// ReadCString reads bytes at p up to the first NUL terminator and
// decodes them as UTF-8. The terminator is not included. A string that
// runs off the end of memory without a terminator fails with the bounds
// error from the read that crossed the boundary.
func ReadCString[M Address](view *externals.MemoryView, p WasmPtr[uint8, M]) (string, error) {
	b, err := p.ReadUntil(view, func(c uint8) bool { return c == 0 })
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.NonUTF8String(errors.PhaseMemory)
	}
	return string(b), nil
}

// WriteString encodes s at p as raw UTF-8 bytes with no terminator and
// returns the number of bytes written.
func WriteString[M Address](view *externals.MemoryView, p WasmPtr[uint8, M], s string) (uint64, error) {
	sl, err := p.Slice(view, uint64(len(s)))
	if err != nil {
		return 0, err
	}
	if err := sl.WriteAll([]byte(s)); err != nil {
		return 0, err
	}
	return uint64(len(s)), nil
}

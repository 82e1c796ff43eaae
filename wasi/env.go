package wasi

import (
	"fmt"
	"io"
	"sync"

	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/store"
)

// EnvConfig holds configuration for a WASI environment.
type EnvConfig struct {
	// Args are the guest's command-line arguments, argv[0] included.
	Args []string

	// Environ are the guest's environment variables as "KEY=VALUE"
	// entries.
	Environ []string

	// Stdout and Stderr receive the guest's fd 1 and fd 2 writes.
	// Nil discards the output.
	Stdout io.Writer
	Stderr io.Writer
}

// Env is the per-instance WASI state. The memory is attached after
// instantiation, exactly once; host functions fail with EFAULT-class
// errors until it is.
type Env struct {
	stdout  io.Writer
	stderr  io.Writer
	memory  *externals.Memory
	args    []string
	environ []string
	mu      sync.RWMutex
}

// NewEnv creates a WASI environment from the given configuration.
func NewEnv(cfg EnvConfig) *Env {
	out := cfg.Stdout
	if out == nil {
		out = io.Discard
	}
	errOut := cfg.Stderr
	if errOut == nil {
		errOut = io.Discard
	}
	return &Env{
		stdout:  out,
		stderr:  errOut,
		args:    append([]string(nil), cfg.Args...),
		environ: append([]string(nil), cfg.Environ...),
	}
}

// SetMemory attaches the guest's exported memory. The memory of an Env
// can only be set once; a second call panics, it indicates the
// environment is being shared between instances.
func (e *Env) SetMemory(mem *externals.Memory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.memory != nil {
		panic("wasi: memory of an Env can only be set once")
	}
	e.memory = mem
}

// Memory returns the attached memory, or nil before SetMemory.
func (e *Env) Memory() *externals.Memory {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.memory
}

// view snapshots the attached memory for one host call.
func (e *Env) view(ctx *store.Context) (*externals.MemoryView, error) {
	mem := e.Memory()
	if mem == nil {
		return nil, errors.Generic(errors.PhaseHost, "WASI memory is not attached")
	}
	return mem.View(ctx)
}

// ExitError is returned from a guest call when the module invokes
// proc_exit.
type ExitError struct {
	Code uint32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("module exited with code %d", e.Code)
}

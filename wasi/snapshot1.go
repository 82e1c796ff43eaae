package wasi

import (
	"crypto/rand"
	"io"
	"time"

	"go.uber.org/zap"

	wasmembed "github.com/wippyai/wasm-embed"
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/imports"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
	"github.com/wippyai/wasm-embed/wasmptr"
)

// Namespace is the import namespace WASI preview1 modules link against.
const Namespace = "wasi_snapshot_preview1"

// WASI preview1 errno values, the subset this environment produces.
const (
	errnoSuccess  uint32 = 0
	errnoBadF     uint32 = 8
	errnoFault    uint32 = 21
	errnoInval    uint32 = 28
	errnoNoSys    uint32 = 52
	errnoOverflow uint32 = 61
)

// memErrno maps a memory access failure onto the errno the guest sees.
func memErrno(err error) uint32 {
	switch {
	case errors.IsKind(err, errors.KindHeapOutOfBounds):
		return errnoFault
	case errors.IsKind(err, errors.KindOverflow):
		return errnoOverflow
	case errors.IsKind(err, errors.KindNonUTF8String):
		return errnoInval
	default:
		return errnoFault
	}
}

func errno(code uint32) ([]uint64, error) {
	return []uint64{uint64(code)}, nil
}

// ImportObject builds an import registry exposing this environment
// under wasi_snapshot_preview1. Host functions resolve the attached
// memory lazily, so the registry can be built before instantiation and
// the memory attached after.
func (e *Env) ImportObject(ctx *store.Context) *imports.Imports {
	reg := imports.New()
	ns := map[string]externals.Extern{
		"args_sizes_get":    e.sizesGet(ctx, func() []string { return e.args }),
		"args_get":          e.listGet(ctx, func() []string { return e.args }),
		"environ_sizes_get": e.sizesGet(ctx, func() []string { return e.environ }),
		"environ_get":       e.listGet(ctx, func() []string { return e.environ }),
		"random_get":        e.randomGet(ctx),
		"clock_time_get":    e.clockTimeGet(ctx),
		"fd_write":          e.fdWrite(ctx),
		"proc_exit":         e.procExit(ctx),
	}
	reg.RegisterNamespace(Namespace, ns)
	return reg
}

func fnExtern(ctx *store.Context, ty types.FunctionType, callable wasmembed.Callable) externals.Extern {
	return externals.NewFunction(ctx, ty, callable).AsExtern()
}

// sizesGet implements args_sizes_get and environ_sizes_get: writes the
// entry count and the total buffer size, NUL terminators included.
func (e *Env) sizesGet(ctx *store.Context, list func() []string) externals.Extern {
	ty := types.FunctionType{
		Params:  []types.ValType{types.I32, types.I32},
		Results: []types.ValType{types.I32},
	}
	return fnExtern(ctx, ty, func(args []uint64) ([]uint64, error) {
		view, err := e.view(ctx)
		if err != nil {
			return errno(errnoFault)
		}
		entries := list()
		var bufSize uint32
		for _, s := range entries {
			bufSize += uint32(len(s)) + 1
		}
		countPtr := wasmptr.New[uint32, wasmptr.Memory32](args[0])
		sizePtr := wasmptr.New[uint32, wasmptr.Memory32](args[1])
		if err := countPtr.Deref(view).Write(uint32(len(entries))); err != nil {
			return errno(memErrno(err))
		}
		if err := sizePtr.Deref(view).Write(bufSize); err != nil {
			return errno(memErrno(err))
		}
		return errno(errnoSuccess)
	})
}

// listGet implements args_get and environ_get: copies each entry into
// the guest buffer as a NUL-terminated string and records its address
// in the pointer table.
func (e *Env) listGet(ctx *store.Context, list func() []string) externals.Extern {
	ty := types.FunctionType{
		Params:  []types.ValType{types.I32, types.I32},
		Results: []types.ValType{types.I32},
	}
	return fnExtern(ctx, ty, func(args []uint64) ([]uint64, error) {
		view, err := e.view(ctx)
		if err != nil {
			return errno(errnoFault)
		}
		entries := list()
		table, err := wasmptr.New[uint32, wasmptr.Memory32](args[0]).Slice(view, uint64(len(entries)))
		if err != nil {
			return errno(memErrno(err))
		}
		buf := wasmptr.New[uint8, wasmptr.Memory32](args[1])
		for i, s := range entries {
			if err := table.Write(uint64(i), uint32(buf.Offset())); err != nil {
				return errno(memErrno(err))
			}
			if _, err := wasmptr.WriteString(view, buf, s); err != nil {
				return errno(memErrno(err))
			}
			term, err := buf.Add(uint64(len(s)))
			if err != nil {
				return errno(errnoOverflow)
			}
			if err := term.Deref(view).Write(0); err != nil {
				return errno(memErrno(err))
			}
			if buf, err = term.Add(1); err != nil {
				return errno(errnoOverflow)
			}
		}
		return errno(errnoSuccess)
	})
}

// randomGet fills buf_len bytes at buf with cryptographic randomness.
func (e *Env) randomGet(ctx *store.Context) externals.Extern {
	ty := types.FunctionType{
		Params:  []types.ValType{types.I32, types.I32},
		Results: []types.ValType{types.I32},
	}
	return fnExtern(ctx, ty, func(args []uint64) ([]uint64, error) {
		view, err := e.view(ctx)
		if err != nil {
			return errno(errnoFault)
		}
		buf := make([]byte, uint32(args[1]))
		if _, err := rand.Read(buf); err != nil {
			return errno(errnoNoSys)
		}
		s, err := wasmptr.New[uint8, wasmptr.Memory32](args[0]).Slice(view, uint64(len(buf)))
		if err != nil {
			return errno(memErrno(err))
		}
		if err := s.WriteAll(buf); err != nil {
			return errno(memErrno(err))
		}
		return errno(errnoSuccess)
	})
}

// clockTimeGet writes the current time in nanoseconds. All clock ids
// map to the host's wall clock.
func (e *Env) clockTimeGet(ctx *store.Context) externals.Extern {
	ty := types.FunctionType{
		Params:  []types.ValType{types.I32, types.I64, types.I32},
		Results: []types.ValType{types.I32},
	}
	return fnExtern(ctx, ty, func(args []uint64) ([]uint64, error) {
		view, err := e.view(ctx)
		if err != nil {
			return errno(errnoFault)
		}
		now := uint64(time.Now().UnixNano())
		out := wasmptr.New[uint64, wasmptr.Memory32](args[2])
		if err := out.Deref(view).Write(now); err != nil {
			return errno(memErrno(err))
		}
		return errno(errnoSuccess)
	})
}

// fdWrite gathers the guest's iovec list and writes it to the stream
// behind fd 1 or fd 2. Other descriptors fail with EBADF.
func (e *Env) fdWrite(ctx *store.Context) externals.Extern {
	ty := types.FunctionType{
		Params:  []types.ValType{types.I32, types.I32, types.I32, types.I32},
		Results: []types.ValType{types.I32},
	}
	return fnExtern(ctx, ty, func(args []uint64) ([]uint64, error) {
		var w io.Writer
		switch uint32(args[0]) {
		case 1:
			w = e.stdout
		case 2:
			w = e.stderr
		default:
			return errno(errnoBadF)
		}
		view, err := e.view(ctx)
		if err != nil {
			return errno(errnoFault)
		}

		// Each iovec is a (buf, buf_len) pair of u32s.
		iovs, err := wasmptr.New[uint32, wasmptr.Memory32](args[1]).Slice(view, uint64(uint32(args[2]))*2)
		if err != nil {
			return errno(memErrno(err))
		}
		var written uint32
		for i := uint64(0); i < uint64(uint32(args[2])); i++ {
			bufPtr, err := iovs.Read(i * 2)
			if err != nil {
				return errno(memErrno(err))
			}
			bufLen, err := iovs.Read(i*2 + 1)
			if err != nil {
				return errno(memErrno(err))
			}
			data, err := wasmptr.New[uint8, wasmptr.Memory32](uint64(bufPtr)).Slice(view, uint64(bufLen))
			if err != nil {
				return errno(memErrno(err))
			}
			chunk, err := data.ReadAll()
			if err != nil {
				return errno(memErrno(err))
			}
			n, err := w.Write(chunk)
			written += uint32(n)
			if err != nil {
				break
			}
		}

		out := wasmptr.New[uint32, wasmptr.Memory32](args[3])
		if err := out.Deref(view).Write(written); err != nil {
			return errno(memErrno(err))
		}
		Logger().Debug("fd_write",
			zap.Uint32("fd", uint32(args[0])),
			zap.Uint32("written", written))
		return errno(errnoSuccess)
	})
}

// procExit aborts the guest call with an ExitError carrying the code.
func (e *Env) procExit(ctx *store.Context) externals.Extern {
	ty := types.FunctionType{
		Params: []types.ValType{types.I32},
	}
	return fnExtern(ctx, ty, func(args []uint64) ([]uint64, error) {
		return nil, &ExitError{Code: uint32(args[0])}
	})
}

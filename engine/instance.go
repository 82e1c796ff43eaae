package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmembed "github.com/wippyai/wasm-embed"
	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/imports"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

// InstanceConfig holds configuration for module instantiation.
type InstanceConfig struct {
	// Name registers the instance under a module name. Empty uses an
	// anonymous name.
	Name string
}

// Instance is an instantiated module with its exports lifted into the
// owning store context.
type Instance struct {
	module  api.Module
	exports map[string]externals.Extern
}

// Instantiate resolves the module's imports against the registry,
// bridges host functions into the runtime and instantiates the module.
// Exports are lifted into sctx, so every extern the instance hands back
// carries sctx's identity.
func (e *Engine) Instantiate(ctx context.Context, sctx *store.Context, mod *Module, reg *imports.Imports, cfg InstanceConfig) (*Instance, error) {
	declared := mod.ImportTypes()
	resolved, err := reg.ForModule(sctx, mod)
	if err != nil {
		return nil, err
	}

	if err := e.bridgeImports(ctx, sctx, declared, resolved); err != nil {
		return nil, err
	}

	modConfig := wazero.NewModuleConfig().WithName(cfg.Name)
	instance, err := e.runtime.InstantiateModule(ctx, mod.compiled, modConfig)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEngine, errors.KindGeneric, err, "instantiate failed")
	}

	exports, err := liftExports(ctx, sctx, mod, instance)
	if err != nil {
		_ = instance.Close(ctx)
		return nil, err
	}

	Logger().Debug("module instantiated",
		zap.String("name", cfg.Name),
		zap.Int("imports", len(resolved)),
		zap.Int("exports", len(exports)))
	return &Instance{module: instance, exports: exports}, nil
}

// bridgeImports publishes resolved function externs as wazero host
// modules, one per import namespace. declared and resolved are parallel
// slices in declaration order.
func (e *Engine) bridgeImports(ctx context.Context, sctx *store.Context, declared []types.ImportType, resolved []externals.Extern) error {
	type binding struct {
		name     string
		callable func(args []uint64) ([]uint64, error)
		ty       types.FunctionType
	}
	byNamespace := make(map[string][]binding)
	var order []string

	for i, imp := range declared {
		ft, ok := imp.Type.(types.FunctionType)
		if !ok {
			// The registry may hold a matching entry, but wazero has no
			// way to accept it.
			return errors.Generic(errors.PhaseEngine,
				"%s imports are not supported by this engine (%s.%s)",
				imp.Type.ExternKind(), imp.Module, imp.Name)
		}

		fn, ok := resolved[i].Function()
		if !ok {
			return errors.TypeMismatch(errors.PhaseLink,
				resolved[i].Kind().String(), ft.ExternKind().String())
		}
		declaredTy, err := fn.Type(sctx)
		if err != nil {
			return err
		}
		if declaredTy.String() != ft.String() {
			return errors.TypeMismatch(errors.PhaseLink, declaredTy.String(), ft.String())
		}
		callable, err := fn.Callable(sctx)
		if err != nil {
			return err
		}

		if _, seen := byNamespace[imp.Module]; !seen {
			order = append(order, imp.Module)
		}
		byNamespace[imp.Module] = append(byNamespace[imp.Module], binding{
			name:     imp.Name,
			callable: callable,
			ty:       ft,
		})
	}

	for _, ns := range order {
		if e.runtime.Module(ns) != nil {
			return errors.Generic(errors.PhaseEngine,
				"host namespace %q is already instantiated on this engine", ns)
		}
		builder := e.runtime.NewHostModuleBuilder(ns)
		for _, b := range byNamespace[ns] {
			callable := b.callable
			nParams := len(b.ty.Params)
			handler := api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				args := make([]uint64, nParams)
				copy(args, stack)
				results, err := callable(args)
				if err != nil {
					// wazero converts host panics into traps that
					// surface as errors from the guest call.
					panic(err)
				}
				copy(stack, results)
			})
			builder.NewFunctionBuilder().
				WithGoModuleFunction(handler, wazeroValTypes(b.ty.Params), wazeroValTypes(b.ty.Results)).
				Export(b.name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Wrap(errors.PhaseEngine, errors.KindGeneric, err, "host module instantiation failed")
		}
	}
	return nil
}

// liftExports converts the instance's function and memory exports into
// externs owned by sctx.
func liftExports(ctx context.Context, sctx *store.Context, mod *Module, instance api.Module) (map[string]externals.Extern, error) {
	exports := make(map[string]externals.Extern)

	for _, name := range sortedKeys(mod.compiled.ExportedFunctions()) {
		fn := instance.ExportedFunction(name)
		if fn == nil {
			continue
		}
		ft := funcType(mod.compiled.ExportedFunctions()[name])
		callable := wasmembed.Callable(func(args []uint64) ([]uint64, error) {
			return fn.Call(ctx, args...)
		})
		ext, err := externals.FromHostValue(sctx, callable, ft)
		if err != nil {
			return nil, err
		}
		exports[name] = ext
	}

	for _, name := range sortedKeys(mod.compiled.ExportedMemories()) {
		mem := instance.ExportedMemory(name)
		if mem == nil {
			continue
		}
		ty := memType(mod.compiled.ExportedMemories()[name])
		ext, err := externals.FromHostValue(sctx, wazeroLinearMemory{mem: mem}, ty)
		if err != nil {
			return nil, err
		}
		exports[name] = ext
	}

	return exports, nil
}

// GetExport returns the lifted extern registered under name.
func (i *Instance) GetExport(name string) (externals.Extern, bool) {
	ext, ok := i.exports[name]
	return ext, ok
}

// Exports returns a copy of the instance's lifted exports.
func (i *Instance) Exports() map[string]externals.Extern {
	out := make(map[string]externals.Extern, len(i.exports))
	for name, ext := range i.exports {
		out[name] = ext
	}
	return out
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}

// wazeroLinearMemory adapts a wazero memory to the embedding's linear
// memory contract. The Bytes view is re-fetched from wazero on every
// call, so growth on either side stays coherent.
type wazeroLinearMemory struct {
	mem api.Memory
}

func (w wazeroLinearMemory) Bytes() []byte {
	size := w.mem.Size()
	if size == 0 {
		return nil
	}
	b, ok := w.mem.Read(0, size)
	if !ok {
		return nil
	}
	return b
}

func (w wazeroLinearMemory) SizePages() uint32 {
	return w.mem.Size() / types.PageSize
}

func (w wazeroLinearMemory) Grow(delta uint32) (uint32, bool) {
	return w.mem.Grow(delta)
}

package engine

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/types"
)

// Engine compiles and instantiates modules on a wazero runtime.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// EnableThreads enables the WebAssembly threads proposal (experimental).
	// This allows atomic operations and shared memory within WASM modules.
	EnableThreads bool
}

// New creates a wazero-backed engine with default configuration.
func New(ctx context.Context) (*Engine, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.EnableThreads {
			runtimeCfg = runtimeCfg.WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
		}
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}, nil
}

// Close releases the runtime and every module instantiated on it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Module is a compiled module awaiting instantiation.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// Compile validates and compiles a binary module.
func (e *Engine) Compile(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEngine, errors.KindGeneric, err, "compile failed")
	}
	Logger().Debug("module compiled",
		zap.Int("imports", len(compiled.ImportedFunctions())+len(compiled.ImportedMemories())),
		zap.Int("size", len(wasmBytes)))
	return &Module{engine: e, compiled: compiled}, nil
}

// Close releases the compiled code.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// ImportTypes lists the module's imports: function imports in
// declaration order, then memory imports. wazero does not surface table
// or global imports, so modules using those fail later, at
// instantiation.
func (m *Module) ImportTypes() []types.ImportType {
	var out []types.ImportType
	for _, fn := range m.compiled.ImportedFunctions() {
		modName, name, _ := fn.Import()
		out = append(out, types.ImportType{
			Module: modName,
			Name:   name,
			Type:   funcType(fn),
		})
	}
	for _, mem := range m.compiled.ImportedMemories() {
		modName, name, _ := mem.Import()
		out = append(out, types.ImportType{
			Module: modName,
			Name:   name,
			Type:   memType(mem),
		})
	}
	return out
}

// ExportTypes lists the module's function and memory exports, sorted by
// name within each kind.
func (m *Module) ExportTypes() []types.ExportType {
	var out []types.ExportType
	for _, name := range sortedKeys(m.compiled.ExportedFunctions()) {
		out = append(out, types.ExportType{
			Name: name,
			Type: funcType(m.compiled.ExportedFunctions()[name]),
		})
	}
	for _, name := range sortedKeys(m.compiled.ExportedMemories()) {
		out = append(out, types.ExportType{
			Name: name,
			Type: memType(m.compiled.ExportedMemories()[name]),
		})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func funcType(def api.FunctionDefinition) types.FunctionType {
	return types.FunctionType{
		Params:  valTypes(def.ParamTypes()),
		Results: valTypes(def.ResultTypes()),
	}
}

func memType(def api.MemoryDefinition) types.MemoryType {
	ty := types.MemoryType{Minimum: types.Pages(def.Min())}
	if max, ok := def.Max(); ok {
		p := types.Pages(max)
		ty.Maximum = &p
	}
	return ty
}

func valTypes(vs []api.ValueType) []types.ValType {
	if len(vs) == 0 {
		return nil
	}
	out := make([]types.ValType, len(vs))
	for i, v := range vs {
		out[i] = valType(v)
	}
	return out
}

func valType(v api.ValueType) types.ValType {
	switch v {
	case api.ValueTypeI32:
		return types.I32
	case api.ValueTypeI64:
		return types.I64
	case api.ValueTypeF32:
		return types.F32
	case api.ValueTypeF64:
		return types.F64
	case api.ValueTypeExternref:
		return types.ExternRef
	default:
		return types.FuncRef
	}
}

func wazeroValTypes(vs []types.ValType) []api.ValueType {
	if len(vs) == 0 {
		return nil
	}
	out := make([]api.ValueType, len(vs))
	for i, v := range vs {
		out[i] = wazeroValType(v)
	}
	return out
}

func wazeroValType(v types.ValType) api.ValueType {
	switch v {
	case types.I32:
		return api.ValueTypeI32
	case types.I64:
		return api.ValueTypeI64
	case types.F32:
		return api.ValueTypeF32
	case types.F64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeExternref
	}
}

package imports

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-embed/errors"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
)

type importKey struct {
	namespace string
	name      string
}

// Imports is a registry of externals keyed by namespace and name.
// Thread-safe.
type Imports struct {
	entries map[importKey]externals.Extern
	mu      sync.RWMutex
}

// New creates an empty import registry.
func New() *Imports {
	return &Imports{entries: make(map[importKey]externals.Extern)}
}

// Define registers an extern under the given namespace and name,
// replacing any previous entry.
func (im *Imports) Define(namespace, name string, ext externals.Extern) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.entries[importKey{namespace, name}] = ext
	Logger().Debug("import defined",
		zap.String("namespace", namespace),
		zap.String("name", name),
		zap.String("kind", ext.Kind().String()))
}

// RegisterNamespace merges a whole namespace into the registry. Entries
// replace existing ones with the same name, so later registrations win.
func (im *Imports) RegisterNamespace(namespace string, exports map[string]externals.Extern) {
	im.mu.Lock()
	defer im.mu.Unlock()
	for name, ext := range exports {
		im.entries[importKey{namespace, name}] = ext
	}
}

// GetExport returns the extern registered under namespace and name.
func (im *Imports) GetExport(namespace, name string) (externals.Extern, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	ext, ok := im.entries[importKey{namespace, name}]
	return ext, ok
}

// Exists reports whether an entry is registered under namespace and name.
func (im *Imports) Exists(namespace, name string) bool {
	_, ok := im.GetExport(namespace, name)
	return ok
}

// ContainsNamespace reports whether any entry lives under the namespace.
func (im *Imports) ContainsNamespace(namespace string) bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	for k := range im.entries {
		if k.namespace == namespace {
			return true
		}
	}
	return false
}

// NamespaceExports returns a copy of every entry under the namespace.
func (im *Imports) NamespaceExports(namespace string) map[string]externals.Extern {
	im.mu.RLock()
	defer im.mu.RUnlock()
	out := make(map[string]externals.Extern)
	for k, ext := range im.entries {
		if k.namespace == namespace {
			out[k.name] = ext
		}
	}
	return out
}

// Len reports the number of registered entries.
func (im *Imports) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.entries)
}

// Module describes a compiled module's import requirements.
type Module interface {
	// ImportTypes lists the module's imports in declaration order.
	ImportTypes() []types.ImportType
}

// ForModule resolves a module's imports in declaration order. The first
// missing entry fails with an unknown-import error naming the namespace,
// the name and the type the module expected. Presence and context identity
// are the only things checked here; whether a found extern's type matches
// the declaration is for the instantiation layer to decide.
func (im *Imports) ForModule(ctx *store.Context, mod Module) ([]externals.Extern, error) {
	declared := mod.ImportTypes()
	resolved := make([]externals.Extern, 0, len(declared))
	for _, imp := range declared {
		ext, ok := im.GetExport(imp.Module, imp.Name)
		if !ok {
			return nil, errors.UnknownImport(imp.Module, imp.Name, typeString(imp.Type))
		}
		if !ext.FromContext(ctx) {
			return nil, errors.CrossContextUse(errors.PhaseLink, "imported extern")
		}
		resolved = append(resolved, ext)
	}
	Logger().Debug("imports resolved", zap.Int("count", len(resolved)))
	return resolved, nil
}

// typeString renders an expected import type for error messages.
// Function signatures carry their full shape, the other kinds just
// their name.
func typeString(t types.ExternType) string {
	if ft, ok := t.(types.FunctionType); ok {
		return ft.String()
	}
	return t.ExternKind().String()
}

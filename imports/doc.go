// Package imports maps (namespace, name) pairs to externals so modules
// can be linked against host-provided functions, memories, tables and
// globals.
//
// An Imports object is a flat registry. Define adds one entry,
// RegisterNamespace merges a whole namespace with last-write-wins
// semantics, and ForModule resolves a module's declared imports in
// declaration order, failing with an unknown-import error that names
// the first missing entry and the type the module expected.
//
// Imports is safe for concurrent use. The externs it holds still
// belong to the context they were created in; resolution verifies the
// context before handing them to an engine.
package imports

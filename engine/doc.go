// Package engine adapts the wazero runtime to the embedding object model.
//
// An Engine wraps a wazero.Runtime. Compile produces a Module that
// reports its import and export types; Instantiate resolves the
// module's imports against an imports.Imports registry, bridges host
// function externs into wazero host modules, runs instantiation and
// lifts the instance's exports back into externs owned by the caller's
// store context.
//
// # Adapter limitations
//
// wazero does not expose table imports or exports through its public
// API, and its host module builder cannot provide memories. Modules
// that import a memory, table or global therefore fail to instantiate
// here, and exported tables and globals are not lifted. Function and
// memory exports, the backbone of the embedding boundary, are fully
// supported.
package engine

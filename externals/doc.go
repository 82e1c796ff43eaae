// Package externals provides the public host-facing objects of the embedding
// boundary: Memory, Table, Global and Function, the Extern union over them,
// and the Value type exchanged with guest code.
//
// Every object is a handle into its owning store.Context. All operations
// take the Context explicitly and validate the handle's context identity
// before any arena access; no call may omit it.
package externals

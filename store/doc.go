// Package store implements the object model of the embedding boundary: one
// Context per embedding session, four arenas owning every VM extern object
// created within that session, and the handle types that reference arena
// slots without owning them.
//
// A Handle carries the identity of the Context that created it. Every
// dereference compares that identity against the supplied Context before any
// arena indexing happens; a mismatch is a CrossContextUse error, never a
// silent read of foreign state. InternalHandle is the context-naive variant
// used inside the wire-level Export representation; promoting one to a
// public Handle requires supplying the Context identity via FromInternal,
// which is the only legal conversion.
package store

// Package wasi provides a minimal WASI snapshot preview1 host
// environment built on the embedding boundary.
//
// An Env carries the guest's arguments, environment variables and
// standard output streams. ImportObject publishes the host functions
// under the wasi_snapshot_preview1 namespace; the guest's exported
// memory is attached afterwards with SetMemory, exactly once, because
// WASI modules export their memory rather than import it.
//
// Every host function accesses guest memory through typed pointers, so
// a misbehaving guest sees WASI errno values (EFAULT, EOVERFLOW,
// EINVAL) instead of corrupting the host.
package wasi

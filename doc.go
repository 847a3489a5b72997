// Package mpivid provides restart-stable virtual handles for opaque
// resources owned by a native message-passing runtime.
//
// A checkpoint/restart system cannot hand the application the runtime's
// own handles: after restart the runtime recreates each resource under a
// different bit pattern. The application instead holds virtual ids, and
// every call into the runtime translates them to the current real ids.
//
// # Architecture Overview
//
//	mpivid/
//	├── idtable/         Bidirectional virtual <-> real table and id allocator
//	├── vid/             Thread-safe per-category registry, observers, restore
//	├── mpi/             Communicator, group, datatype and operator registries
//	├── hostmod/         wazero host module exposing the registries to guests
//	├── errors/          Structured error types for debugging
//	├── cmd/vidctl/      Script runner and interactive TUI
//	└── examples/        Runnable usage examples
//
// # Quick Start
//
//	handles := mpi.New(mpi.DefaultConfig())
//
//	v := handles.AddNewComm(realComm)      // after the runtime creates it
//	r := handles.VirtualToRealComm(v)      // before every runtime call
//	handles.UpdateCommMap(v, recreated)    // after restart
//	r = handles.RemoveOldComm(v)           // then free r in the runtime
//
// # Null Handles
//
// Each category has a null sentinel equal to the runtime's own null handle.
// It translates to itself in both directions and is never stored, so code
// can pass it through the translation layer unchanged.
//
// # Thread Safety
//
// Registries are safe for concurrent use. Lookups take a read lock;
// creation, removal and remapping take the write lock. Observers run after
// the lock is released.
//
// # Restart
//
// Handles.Restore walks every live mapping and rebinds it through a
// caller-supplied function. Groups and datatypes are restored before the
// communicators and operators built from them. A real id may be claimed by
// a second virtual id before its first owner is remapped; the reverse
// index always follows the newest binding.
package mpivid

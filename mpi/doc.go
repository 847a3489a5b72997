// Package mpi wires the four resource categories of a message-passing
// runtime (communicators, groups, datatypes, reduction operators) to their
// own vid.Registry and exposes typed wrappers for the interception layer.
//
//	h := mpi.New(mpi.Config{Logger: log})
//	vcomm := h.AddNewComm(realComm)       // after the runtime creates it
//	real := h.VirtualToRealComm(vcomm)    // before every runtime call
//	h.UpdateCommMap(vcomm, newRealComm)   // during restart recovery
//	h.RemoveOldComm(vcomm)                // when the application frees it
//
// Every category has an independent id space and lock; a communicator
// call never waits on a datatype call. Build Handles once and share it.
package mpi

// Package idtable implements the bidirectional id table behind one resource
// category: a virtual id space handed to the application, a real id space
// issued by the native runtime, and the allocator that mints virtual ids.
//
// Both directions are kept in separate maps that every mutation updates
// together:
//
//	t := idtable.New[uint64]("MpiComm", 0)
//	v, ok := t.NewVirtualID()   // never 0, never a live key
//	t.UpdateMapping(v, real)
//	t.VirtualToReal(v)          // real
//	t.Erase(v)
//
// # Allocation
//
// Virtual ids come from a counter that starts at 1 (WithFirstID) and only
// moves forward, skipping the null sentinel and ids that are still live.
// When the counter passes the maximum id (WithMaxID, default the largest
// value of T) the table is exhausted for good and NewVirtualID reports false.
//
// # Failure model
//
// VirtualToReal and RealToVirtual treat an unknown id as a programming error
// and panic with an *errors.Error. LookupVirtual and LookupReal report
// absence instead. The table never logs.
//
// A Table is not synchronized; the vid package wraps it in a lock.
package idtable

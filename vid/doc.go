// Package vid provides the per-category registry that keeps application
// handles stable while the native runtime's handles change underneath.
//
// A Registry owns one idtable.Table behind a lock and applies the null
// sentinel policy uniformly: the null handle translates to itself and is
// never stored.
//
// # Protocol
//
// The interception layer drives a registry with four calls:
//
//	virt := reg.OnCreate(real)          // runtime created a resource
//	real := reg.VirtualToReal(virt)     // translate at every call boundary
//	real := reg.OnRemove(virt)          // application released it
//	reg.UpdateMapping(virt, newReal)    // restart recovery rebinds it
//
// OnCreate mints; UpdateMapping never does. Remapping a virtual id that was
// never registered is reported and ignored so restart bugs stay visible.
//
// # Diagnostics
//
// Protocol anomalies (removing or remapping an unknown virtual id,
// registering a real id twice) are logged at warn level and the call
// returns the null sentinel or the existing mapping. Running out of virtual
// ids is logged at error level. Translating an unknown id with
// VirtualToReal or RealToVirtual panics; TryVirtualToReal and
// TryRealToVirtual report absence instead.
//
// # Observers
//
// Subscribe receives created, reused, removed and remapped events after
// the registry lock is released.
package vid

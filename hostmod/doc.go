// Package hostmod exposes the handle virtualization layer to WebAssembly
// guests through a wazero host module named "mpi_vid".
//
// Each category contributes five functions, all over i64 handles:
//
//	comm_create(real) -> virt          comm_remove(virt) -> real
//	comm_update(virt, real) -> null    comm_to_real(virt) -> real
//	comm_to_virtual(real) -> virt
//
// and likewise with the group_, type_ and op_ prefixes. A guest-side
// interception shim calls these around every runtime call.
//
// Translating an unknown id cannot unwind into guest state, so the host
// logs it at error level and returns the category's null handle.
package hostmod

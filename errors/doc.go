// Package errors provides structured error types for the handle virtualization layer.
//
// Errors are categorized by Phase (which operation failed) and Kind (error category).
// The Error type carries the resource category name, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseUpdate, errors.KindNotFound).
//		Category("MpiComm").
//		Value(virt).
//		Detail("cannot remap unknown virtual id").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownVirtual(errors.PhaseLookup, "MpiComm", 7)
//	err := errors.Exhausted("MpiType", math.MaxUint32)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors

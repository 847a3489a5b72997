package mpi

import (
	"strings"

	"github.com/wippyai/mpi-vid/errors"
	"github.com/wippyai/mpi-vid/vid"
)

// Category identifies one of the four resource kinds.
type Category uint8

const (
	CategoryComm Category = iota
	CategoryGroup
	CategoryType
	CategoryOp
)

// Categories lists every category in a stable order.
var Categories = []Category{CategoryComm, CategoryGroup, CategoryType, CategoryOp}

// String returns the category display name.
func (c Category) String() string {
	switch c {
	case CategoryComm:
		return CommName
	case CategoryGroup:
		return GroupName
	case CategoryType:
		return TypeName
	case CategoryOp:
		return OpName
	default:
		return "unknown"
	}
}

// Short returns the lowercase short name used by tools ("comm", "group", "type", "op").
func (c Category) Short() string {
	switch c {
	case CategoryComm:
		return "comm"
	case CategoryGroup:
		return "group"
	case CategoryType:
		return "type"
	case CategoryOp:
		return "op"
	default:
		return "unknown"
	}
}

// ParseCategory accepts a short name, a display name or a common alias.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comm", "communicator", "mpicomm":
		return CategoryComm, nil
	case "group", "mpigroup":
		return CategoryGroup, nil
	case "type", "datatype", "mpitype":
		return CategoryType, nil
	case "op", "operator", "mpiop":
		return CategoryOp, nil
	}
	return 0, errors.UnknownCategory(errors.PhaseParse, s)
}

// Accessor is a category registry seen through plain uint64 handles.
// Adapters that cross a type-erased boundary (wasm imports, command
// scripts) use it instead of the typed wrappers.
type Accessor interface {
	Name() string
	Null() uint64
	OnCreate(real uint64) uint64
	OnRemove(virt uint64) uint64
	UpdateMapping(virt, real uint64) uint64
	TryVirtualToReal(virt uint64) (uint64, bool)
	TryRealToVirtual(real uint64) (uint64, bool)
	Len() int
	Snapshot() []vid.Mapping[uint64]
}

// Accessor returns the untyped view of category c.
func (h *Handles) Accessor(c Category) (Accessor, error) {
	switch c {
	case CategoryComm:
		return accessor[Comm]{h.comms}, nil
	case CategoryGroup:
		return accessor[Group]{h.groups}, nil
	case CategoryType:
		return accessor[Datatype]{h.types}, nil
	case CategoryOp:
		return accessor[Op]{h.ops}, nil
	}
	return nil, errors.UnknownCategory(errors.PhaseLookup, c.String())
}

type accessor[T ~uint64] struct {
	r *vid.Registry[T]
}

func (a accessor[T]) Name() string { return a.r.Name() }
func (a accessor[T]) Null() uint64 { return uint64(a.r.Null()) }

func (a accessor[T]) OnCreate(real uint64) uint64 {
	return uint64(a.r.OnCreate(T(real)))
}

func (a accessor[T]) OnRemove(virt uint64) uint64 {
	return uint64(a.r.OnRemove(T(virt)))
}

func (a accessor[T]) UpdateMapping(virt, real uint64) uint64 {
	return uint64(a.r.UpdateMapping(T(virt), T(real)))
}

func (a accessor[T]) TryVirtualToReal(virt uint64) (uint64, bool) {
	real, ok := a.r.TryVirtualToReal(T(virt))
	return uint64(real), ok
}

func (a accessor[T]) TryRealToVirtual(real uint64) (uint64, bool) {
	virt, ok := a.r.TryRealToVirtual(T(real))
	return uint64(virt), ok
}

func (a accessor[T]) Len() int { return a.r.Len() }

func (a accessor[T]) Snapshot() []vid.Mapping[uint64] {
	snap := a.r.Snapshot()
	out := make([]vid.Mapping[uint64], len(snap))
	for i, m := range snap {
		out[i] = vid.Mapping[uint64]{Virtual: uint64(m.Virtual), Real: uint64(m.Real)}
	}
	return out
}

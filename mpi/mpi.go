package mpi

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/mpi-vid/idtable"
	"github.com/wippyai/mpi-vid/vid"
)

// Handle types, one per resource category. Values of one category carry
// no meaning in another.
type (
	Comm     uint64
	Group    uint64
	Datatype uint64
	Op       uint64
)

// Category display names used in diagnostics.
const (
	CommName  = "MpiComm"
	GroupName = "MpiGroup"
	TypeName  = "MpiType"
	OpName    = "MpiOp"
)

// Config holds the native runtime's null sentinels and the diagnostics logger.
type Config struct {
	Logger    *zap.Logger
	TableOpts []idtable.Option
	CommNull  Comm
	GroupNull Group
	TypeNull  Datatype
	OpNull    Op
}

// DefaultConfig returns a config for runtimes whose null handles are all zero.
func DefaultConfig() Config {
	return Config{}
}

// Handles owns the four category registries. Build it once at startup and
// pass it to every call site.
type Handles struct {
	comms  *vid.Registry[Comm]
	groups *vid.Registry[Group]
	types  *vid.Registry[Datatype]
	ops    *vid.Registry[Op]
}

// New builds the four registries from cfg.
func New(cfg Config) *Handles {
	var opts []vid.Option
	if cfg.Logger != nil {
		opts = append(opts, vid.WithLogger(cfg.Logger))
	}
	if len(cfg.TableOpts) > 0 {
		opts = append(opts, vid.WithTableOptions(cfg.TableOpts...))
	}

	return &Handles{
		comms:  vid.New(CommName, cfg.CommNull, opts...),
		groups: vid.New(GroupName, cfg.GroupNull, opts...),
		types:  vid.New(TypeName, cfg.TypeNull, opts...),
		ops:    vid.New(OpName, cfg.OpNull, opts...),
	}
}

// Comms returns the communicator registry.
func (h *Handles) Comms() *vid.Registry[Comm] { return h.comms }

// Groups returns the group registry.
func (h *Handles) Groups() *vid.Registry[Group] { return h.groups }

// Types returns the datatype registry.
func (h *Handles) Types() *vid.Registry[Datatype] { return h.types }

// Ops returns the reduction operator registry.
func (h *Handles) Ops() *vid.Registry[Op] { return h.ops }

// RealToVirtualComm returns the virtual id for a live real communicator. Panics if id is unknown.
func (h *Handles) RealToVirtualComm(id Comm) Comm { return h.comms.RealToVirtual(id) }

// VirtualToRealComm returns the current real communicator behind a virtual id. Panics if id is unknown.
func (h *Handles) VirtualToRealComm(id Comm) Comm { return h.comms.VirtualToReal(id) }

// AddNewComm registers a communicator the runtime just created and returns its virtual id.
func (h *Handles) AddNewComm(id Comm) Comm { return h.comms.OnCreate(id) }

// RemoveOldComm releases a virtual communicator id and returns the real id to free.
func (h *Handles) RemoveOldComm(id Comm) Comm { return h.comms.OnRemove(id) }

// UpdateCommMap rebinds a virtual communicator id to the real id recreated after restart.
func (h *Handles) UpdateCommMap(v, r Comm) Comm { return h.comms.UpdateMapping(v, r) }

// RealToVirtualGroup returns the virtual id for a live real group. Panics if id is unknown.
func (h *Handles) RealToVirtualGroup(id Group) Group { return h.groups.RealToVirtual(id) }

// VirtualToRealGroup returns the current real group behind a virtual id. Panics if id is unknown.
func (h *Handles) VirtualToRealGroup(id Group) Group { return h.groups.VirtualToReal(id) }

// AddNewGroup registers a group the runtime just created and returns its virtual id.
func (h *Handles) AddNewGroup(id Group) Group { return h.groups.OnCreate(id) }

// RemoveOldGroup releases a virtual group id and returns the real id to free.
func (h *Handles) RemoveOldGroup(id Group) Group { return h.groups.OnRemove(id) }

// UpdateGroupMap rebinds a virtual group id to the real id recreated after restart.
func (h *Handles) UpdateGroupMap(v, r Group) Group { return h.groups.UpdateMapping(v, r) }

// RealToVirtualType returns the virtual id for a live real datatype. Panics if id is unknown.
func (h *Handles) RealToVirtualType(id Datatype) Datatype { return h.types.RealToVirtual(id) }

// VirtualToRealType returns the current real datatype behind a virtual id. Panics if id is unknown.
func (h *Handles) VirtualToRealType(id Datatype) Datatype { return h.types.VirtualToReal(id) }

// AddNewType registers a datatype the runtime just created and returns its virtual id.
func (h *Handles) AddNewType(id Datatype) Datatype { return h.types.OnCreate(id) }

// RemoveOldType releases a virtual datatype id and returns the real id to free.
func (h *Handles) RemoveOldType(id Datatype) Datatype { return h.types.OnRemove(id) }

// UpdateTypeMap rebinds a virtual datatype id to the real id recreated after restart.
func (h *Handles) UpdateTypeMap(v, r Datatype) Datatype { return h.types.UpdateMapping(v, r) }

// RealToVirtualOp returns the virtual id for a live real operator. Panics if id is unknown.
func (h *Handles) RealToVirtualOp(id Op) Op { return h.ops.RealToVirtual(id) }

// VirtualToRealOp returns the current real operator behind a virtual id. Panics if id is unknown.
func (h *Handles) VirtualToRealOp(id Op) Op { return h.ops.VirtualToReal(id) }

// AddNewOp registers an operator the runtime just created and returns its virtual id.
func (h *Handles) AddNewOp(id Op) Op { return h.ops.OnCreate(id) }

// RemoveOldOp releases a virtual operator id and returns the real id to free.
func (h *Handles) RemoveOldOp(id Op) Op { return h.ops.OnRemove(id) }

// UpdateOpMap rebinds a virtual operator id to the real id recreated after restart.
func (h *Handles) UpdateOpMap(v, r Op) Op { return h.ops.UpdateMapping(v, r) }

// Remap supplies post-restart real ids, one function per category. A nil
// function leaves that category untouched.
type Remap struct {
	Comm  vid.RemapFunc[Comm]
	Group vid.RemapFunc[Group]
	Type  vid.RemapFunc[Datatype]
	Op    vid.RemapFunc[Op]
}

// Restore rebinds every live virtual id after restart. Categories are
// restored in dependency order: groups and datatypes before the
// communicators and operators built from them.
func (h *Handles) Restore(ctx context.Context, remap Remap) error {
	if remap.Group != nil {
		if err := h.groups.Restore(ctx, remap.Group); err != nil {
			return err
		}
	}
	if remap.Type != nil {
		if err := h.types.Restore(ctx, remap.Type); err != nil {
			return err
		}
	}
	if remap.Comm != nil {
		if err := h.comms.Restore(ctx, remap.Comm); err != nil {
			return err
		}
	}
	if remap.Op != nil {
		if err := h.ops.Restore(ctx, remap.Op); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns the number of live virtual ids per category name.
func (h *Handles) Counts() map[string]int {
	return map[string]int{
		CommName:  h.comms.Len(),
		GroupName: h.groups.Len(),
		TypeName:  h.types.Len(),
		OpName:    h.ops.Len(),
	}
}

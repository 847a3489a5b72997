package vid

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/mpi-vid/errors"
	"github.com/wippyai/mpi-vid/idtable"
)

// Registry is the thread-safe facade over one category's id table.
// The null sentinel short-circuits every operation and is never stored.
type Registry[T idtable.ID] struct {
	table     *idtable.Table[T]
	log       *zap.Logger
	observers []subscription[T]
	name      string
	nextSub   uint64
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	null      T
}

type subscription[T idtable.ID] struct {
	obs Observer[T]
	id  uint64
}

// New creates a registry for the category name with the given null sentinel.
func New[T idtable.ID](name string, null T, opts ...Option) *Registry[T] {
	var c config
	for _, fn := range opts {
		fn(&c)
	}
	if c.logger == nil {
		c.logger = Logger()
	}

	return &Registry[T]{
		table: idtable.New(name, null, c.tableOpts...),
		log:   c.logger.With(zap.String("category", name)),
		name:  name,
		null:  null,
	}
}

// Name returns the category display name.
func (r *Registry[T]) Name() string { return r.name }

// Null returns the category's null sentinel.
func (r *Registry[T]) Null() T { return r.null }

// VirtualToReal translates an application handle to the live runtime handle.
// An unknown non-null id is a programming error and panics.
func (r *Registry[T]) VirtualToReal(virt T) T {
	if virt == r.null {
		return virt
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.VirtualToReal(virt)
}

// RealToVirtual translates a runtime handle to its application handle.
// An unknown non-null id is a programming error and panics.
func (r *Registry[T]) RealToVirtual(real T) T {
	if real == r.null {
		return real
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.RealToVirtual(real)
}

// TryVirtualToReal is VirtualToReal for callers that cannot guarantee virt
// was registered. The null sentinel maps to itself.
func (r *Registry[T]) TryVirtualToReal(virt T) (T, bool) {
	if virt == r.null {
		return virt, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.LookupVirtual(virt)
}

// TryRealToVirtual is RealToVirtual for callers that cannot guarantee real
// was registered. The null sentinel maps to itself.
func (r *Registry[T]) TryRealToVirtual(real T) (T, bool) {
	if real == r.null {
		return real, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.LookupReal(real)
}

// VirtualIDExists reports whether virt is live.
func (r *Registry[T]) VirtualIDExists(virt T) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.VirtualIDExists(virt)
}

// RealIDExists reports whether real is bound to a virtual id.
func (r *Registry[T]) RealIDExists(real T) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.RealIDExists(real)
}

// OnCreate registers a real id returned by the runtime and returns the
// virtual id the application must use from now on.
//
// A real id that is already registered keeps its virtual id. Returns the
// null sentinel for a null real id or when the id space is exhausted.
func (r *Registry[T]) OnCreate(real T) T {
	if real == r.null {
		return r.null
	}

	r.mu.Lock()
	if virt, ok := r.table.LookupReal(real); ok {
		r.mu.Unlock()
		r.log.Warn("real id already registered, reusing virtual id",
			zap.Uint64("real", uint64(real)),
			zap.Uint64("virtual", uint64(virt)),
			zap.Error(errors.Duplicate(r.name, uint64(real), uint64(virt))))
		r.notify(Event[T]{Type: EventReused, Category: r.name, Virtual: virt, Real: real})
		return virt
	}

	virt, ok := r.table.NewVirtualID()
	if !ok {
		limit := r.table.Max()
		r.mu.Unlock()
		r.log.Error("failed to create a new virtual id",
			zap.Uint64("real", uint64(real)),
			zap.Error(errors.Exhausted(r.name, uint64(limit))))
		return r.null
	}
	r.table.UpdateMapping(virt, real)
	r.mu.Unlock()

	r.notify(Event[T]{Type: EventCreated, Category: r.name, Virtual: virt, Real: real})
	return virt
}

// OnRemove releases virt and returns the real id it mapped to, which the
// caller must release in the runtime. Returns the null sentinel when virt
// is null or unknown.
func (r *Registry[T]) OnRemove(virt T) T {
	if virt == r.null {
		return r.null
	}

	r.mu.Lock()
	real, ok := r.table.LookupVirtual(virt)
	if !ok {
		r.mu.Unlock()
		r.log.Warn("cannot delete non-existent virtual id",
			zap.Uint64("virtual", uint64(virt)))
		return r.null
	}
	owner, owned := r.table.LookupReal(real)
	r.table.Erase(virt)
	r.mu.Unlock()

	if !owned || owner != virt {
		fields := []zap.Field{
			zap.Uint64("virtual", uint64(virt)),
			zap.Uint64("real", uint64(real)),
		}
		if owned {
			fields = append(fields, zap.Uint64("owner", uint64(owner)))
		}
		r.log.Warn("removed virtual id whose real id is bound elsewhere", fields...)
	}

	r.notify(Event[T]{Type: EventRemoved, Category: r.name, Virtual: virt, Real: real})
	return real
}

// UpdateMapping rebinds an existing virtual id to a new real id after
// restart. It never mints: an unknown virt is reported and left unmapped.
// Always returns the null sentinel.
func (r *Registry[T]) UpdateMapping(virt, real T) T {
	if virt == r.null || real == r.null {
		return r.null
	}

	r.mu.Lock()
	old, ok := r.table.LookupVirtual(virt)
	if !ok {
		owner, owned := r.table.LookupReal(real)
		r.mu.Unlock()
		fields := []zap.Field{
			zap.Uint64("virtual", uint64(virt)),
			zap.Uint64("real", uint64(real)),
		}
		if owned {
			fields = append(fields, zap.Uint64("owner", uint64(owner)))
		}
		r.log.Warn("cannot update mapping for a non-existent virtual id", fields...)
		return r.null
	}
	// The previous owner keeps its forward entry until it is remapped
	// itself; until then two virtual ids resolve to the same real id.
	if owner, owned := r.table.LookupReal(real); owned && owner != virt {
		r.log.Warn("real id moves to another virtual id",
			zap.Uint64("real", uint64(real)),
			zap.Uint64("from", uint64(owner)),
			zap.Uint64("to", uint64(virt)))
	}
	r.table.UpdateMapping(virt, real)
	r.mu.Unlock()

	r.notify(Event[T]{Type: EventRemapped, Category: r.name, Virtual: virt, Real: real, OldReal: old})
	return r.null
}

// Len returns the number of live virtual ids.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.Len()
}

// Snapshot returns the live mappings in ascending virtual id order.
func (r *Registry[T]) Snapshot() []Mapping[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Mapping[T], 0, r.table.Len())
	r.table.Each(func(virt, real T) bool {
		out = append(out, Mapping[T]{Virtual: virt, Real: real})
		return true
	})
	return out
}

// Subscribe adds an observer and returns a function that removes it.
func (r *Registry[T]) Subscribe(o Observer[T]) (unsubscribe func()) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()

	r.nextSub++
	id := r.nextSub
	r.observers = append(r.observers, subscription[T]{obs: o, id: id})

	return func() {
		r.obsMu.Lock()
		defer r.obsMu.Unlock()
		for i, s := range r.observers {
			if s.id == id {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry[T]) notify(e Event[T]) {
	r.obsMu.RLock()
	subs := r.observers
	r.obsMu.RUnlock()

	for _, s := range subs {
		s.obs.OnMappingEvent(e)
	}
}

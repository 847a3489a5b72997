package idtable

import (
	"maps"
	"slices"

	"github.com/wippyai/mpi-vid/errors"
)

// ID is the set of handle representations a table can hold.
// Native runtimes hand out integers or pointers; both fit here.
type ID interface {
	~uint32 | ~uint64 | ~uintptr
}

// Option configures a Table.
type Option func(*options)

type options struct {
	first    uint64
	max      uint64
	hasFirst bool
	hasMax   bool
}

// WithFirstID sets the first virtual id the allocator hands out. Defaults to 1.
func WithFirstID(first uint64) Option {
	return func(o *options) {
		o.first = first
		o.hasFirst = true
	}
}

// WithMaxID caps the virtual id space. Defaults to the largest value of T.
func WithMaxID(max uint64) Option {
	return func(o *options) {
		o.max = max
		o.hasMax = true
	}
}

// Table is a bidirectional virtual <-> real id map for one resource category.
// Table is not safe for concurrent use; callers serialize access.
type Table[T ID] struct {
	byVirtual map[T]T
	byReal    map[T]T
	name      string
	null      T
	next      T
	max       T
	exhausted bool
}

// New creates an empty table. null is the category's reserved sentinel and
// is never stored or handed out.
func New[T ID](name string, null T, opts ...Option) *Table[T] {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	t := &Table[T]{
		byVirtual: make(map[T]T),
		byReal:    make(map[T]T),
		name:      name,
		null:      null,
		next:      1,
		max:       ^T(0),
	}
	if o.hasMax && o.max < uint64(t.max) {
		t.max = T(o.max)
	}
	first := uint64(1)
	if o.hasFirst {
		first = o.first
	}
	if first > uint64(t.max) {
		t.exhausted = true
	} else {
		t.next = T(first)
	}
	return t
}

// Name returns the category name used in diagnostics.
func (t *Table[T]) Name() string { return t.name }

// Null returns the category's null sentinel.
func (t *Table[T]) Null() T { return t.null }

// Max returns the largest virtual id the allocator may hand out.
func (t *Table[T]) Max() T { return t.max }

// RealToVirtual returns the virtual id mapped to real.
// It panics if real has no entry; use LookupReal when that is possible.
func (t *Table[T]) RealToVirtual(real T) T {
	virt, ok := t.byReal[real]
	if !ok {
		panic(errors.UnknownReal(errors.PhaseLookup, t.name, uint64(real)))
	}
	return virt
}

// VirtualToReal returns the real id mapped to virt.
// It panics if virt has no entry; use LookupVirtual when that is possible.
func (t *Table[T]) VirtualToReal(virt T) T {
	real, ok := t.byVirtual[virt]
	if !ok {
		panic(errors.UnknownVirtual(errors.PhaseLookup, t.name, uint64(virt)))
	}
	return real
}

// LookupReal returns the virtual id mapped to real, if any.
func (t *Table[T]) LookupReal(real T) (T, bool) {
	virt, ok := t.byReal[real]
	if !ok {
		return t.null, false
	}
	return virt, true
}

// LookupVirtual returns the real id mapped to virt, if any.
func (t *Table[T]) LookupVirtual(virt T) (T, bool) {
	real, ok := t.byVirtual[virt]
	if !ok {
		return t.null, false
	}
	return real, true
}

// RealIDExists reports whether real has an entry.
func (t *Table[T]) RealIDExists(real T) bool {
	_, ok := t.byReal[real]
	return ok
}

// VirtualIDExists reports whether virt has an entry.
func (t *Table[T]) VirtualIDExists(virt T) bool {
	_, ok := t.byVirtual[virt]
	return ok
}

// NewVirtualID returns a virtual id that is neither the null sentinel nor a
// live key. Ids come from a monotonic counter and are never handed out twice.
// Returns false once the counter has passed Max.
func (t *Table[T]) NewVirtualID() (T, bool) {
	for !t.exhausted {
		id := t.next
		if id == t.max {
			t.exhausted = true
		} else {
			t.next++
		}

		if id == t.null {
			continue
		}
		if _, live := t.byVirtual[id]; live {
			continue
		}
		return id, true
	}
	return t.null, false
}

// Exhausted reports whether the allocator has run out of ids.
func (t *Table[T]) Exhausted() bool { return t.exhausted }

// UpdateMapping binds virt to real, replacing any real id virt mapped to.
//
// The reverse index always points at the most recent binding. If another
// virtual id still maps to real (a stale binding mid-restart), its forward
// entry is kept so it can be remapped later, but real now resolves to virt.
func (t *Table[T]) UpdateMapping(virt, real T) {
	if old, ok := t.byVirtual[virt]; ok {
		if old == real {
			t.byReal[real] = virt
			return
		}
		if owner, ok := t.byReal[old]; ok && owner == virt {
			delete(t.byReal, old)
		}
	}
	t.byVirtual[virt] = real
	t.byReal[real] = virt
}

// Erase removes the entry for virt. No-op if virt is unknown.
func (t *Table[T]) Erase(virt T) {
	real, ok := t.byVirtual[virt]
	if !ok {
		return
	}
	delete(t.byVirtual, virt)
	if owner, ok := t.byReal[real]; ok && owner == virt {
		delete(t.byReal, real)
	}
}

// Len returns the number of live virtual ids.
func (t *Table[T]) Len() int {
	return len(t.byVirtual)
}

// Each calls fn for every entry in ascending virtual id order until fn
// returns false. fn must not mutate the table.
func (t *Table[T]) Each(fn func(virt, real T) bool) {
	for _, virt := range slices.Sorted(maps.Keys(t.byVirtual)) {
		if !fn(virt, t.byVirtual[virt]) {
			return
		}
	}
}

// Clear drops every entry. The allocator keeps its position so ids handed
// out before Clear are not reissued.
func (t *Table[T]) Clear() {
	clear(t.byVirtual)
	clear(t.byReal)
}

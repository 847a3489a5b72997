package vid

import (
	"go.uber.org/zap"

	"github.com/wippyai/mpi-vid/idtable"
)

// EventType identifies a mapping lifecycle change.
type EventType uint8

const (
	// EventCreated: a fresh virtual id was minted for a real id.
	EventCreated EventType = iota
	// EventReused: OnCreate saw a real id that was already mapped.
	EventReused
	// EventRemoved: a virtual id was released.
	EventRemoved
	// EventRemapped: a virtual id was rebound to a new real id.
	EventRemapped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventReused:
		return "reused"
	case EventRemoved:
		return "removed"
	case EventRemapped:
		return "remapped"
	default:
		return "unknown"
	}
}

// Event describes one mapping change. OldReal is set for EventRemapped.
type Event[T idtable.ID] struct {
	Category string
	Virtual  T
	Real     T
	OldReal  T
	Type     EventType
}

// Observer receives mapping events. Observers run after the registry lock
// is released and may call back into the registry.
type Observer[T idtable.ID] interface {
	OnMappingEvent(Event[T])
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[T idtable.ID] func(Event[T])

// OnMappingEvent calls f(e).
func (f ObserverFunc[T]) OnMappingEvent(e Event[T]) { f(e) }

// Mapping is one live (virtual, real) pair.
type Mapping[T idtable.ID] struct {
	Virtual T
	Real    T
}

// Option configures a Registry.
type Option func(*config)

type config struct {
	logger    *zap.Logger
	tableOpts []idtable.Option
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTableOptions passes options through to the underlying id table.
func WithTableOptions(opts ...idtable.Option) Option {
	return func(c *config) { c.tableOpts = append(c.tableOpts, opts...) }
}

package eventbus

// Event represents an arbitrary event passed on the bus.
type Event = any

// EventBus is the untyped publish/subscribe contract used by components
// that listen to several event kinds.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation.
type Bus = TypedBus[Event]

// New creates a new untyped Bus.
func New(opts ...Option) *Bus { return NewTyped[Event](opts...) }

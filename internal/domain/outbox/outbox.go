package outbox

import "context"

// Event is a named domain fact published after a state change has been written.
type Event interface {
	EventName() string
}

// Handler processes a published event. Returned errors are logged by the bus, never retried.
type Handler func(ctx context.Context, e Event) error

// Publisher hands events to the bus. Publishing is best-effort relative to the write it follows.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

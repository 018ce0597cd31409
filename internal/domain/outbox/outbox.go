package outbox

import "context"

// Event is a cart-side event identified by name, e.g. "cart.committed".
type Event interface {
	EventName() string
}

// Handler processes a delivered event.
type Handler func(ctx context.Context, e Event) error

// Publisher hands events to the bus. Publish must not wait for handlers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

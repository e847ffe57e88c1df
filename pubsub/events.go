package pubsub

import "context"

const (
	// CreatedEvent marks a newly produced resource.
	CreatedEvent EventType = "created"
	// FinishedEvent marks the end of a resource's lifecycle.
	FinishedEvent EventType = "finished"
)

type (
	// EventType identifies the kind of event.
	EventType string

	// Event is a single occurrence in a resource's lifecycle.
	Event[T any] struct {
		Type    EventType
		Payload T
	}

	// Publisher publishes events to all subscribers.
	Publisher[T any] interface {
		Publish(EventType, T)
	}

	// Subscriber returns a read-only event channel that closes when the
	// context is done.
	Subscriber[T any] interface {
		Subscribe(context.Context) <-chan Event[T]
	}
)

package observability

import "errors"

var (
	errEventBusClosed          = errors.New("observability: event bus is closed")
	errEventSubscriberExists   = errors.New("observability: subscriber already exists")
	errEventSubscriberNotFound = errors.New("observability: subscriber not found")
	errEventNilChannel         = errors.New("observability: nil channel provided")
)

// Package events publishes authentication lifecycle events (registration,
// successful and failed logins) to a pluggable sink without blocking the
// request path.
package events

import (
	"context"
	"time"
)

// Type classifies an authentication event.
type Type string

const (
	UserRegistered Type = "USER_REGISTERED"
	LoginSuccess   Type = "LOGIN_SUCCESS"
	LoginFailed    Type = "LOGIN_FAILED"
)

// Event is one authentication lifecycle occurrence. Reason is set only for
// failures and never carries proof material.
type Event struct {
	Type     Type
	Username string
	Reason   string
	At       time.Time
}

// Publisher accepts events from the request path. Implementations must not
// block: a slow or unavailable sink never delays authentication.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Sink delivers events to their destination (log, broker, ...).
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Noop discards all events. Used where event publishing is not wired.
type Noop struct{}

func (Noop) Publish(ctx context.Context, e Event) {}

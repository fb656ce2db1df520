// Package logging defines the structured logger the zkauth server and CLI
// log through. Call sites depend on the Logger interface only; the process
// bootstrap decides the backend (JSON slog in production, no-op fakes in
// tests).
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "challenge issued", "username", username, "ttl", ttl)
//
// Proof material (private scalars, responses, token strings) must never be
// logged; identifiers and outcomes only.
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions, e.g. a failed
	// last-login update after a successful verification.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value
	// pairs. Components scope themselves with With("module", ...).
	With(args ...any) Logger
}

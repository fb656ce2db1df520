package challenges

import (
	"context"
	"time"
)

// ConsumeResult is the outcome of an atomic consume attempt.
type ConsumeResult int

const (
	// ConsumeOK means the caller won the challenge; no other caller ever will.
	ConsumeOK ConsumeResult = iota
	// ConsumeAlready means the challenge was consumed by an earlier attempt.
	ConsumeAlready
	// ConsumeNotFound means no record exists for the id.
	ConsumeNotFound
)

// Store is the shared-state seam for issued challenges.
//
// Consume must be atomic: over a challenge's lifetime exactly one call
// returns ConsumeOK, regardless of how many verify attempts race on it.
// Implementations keep expired records visible for a retention window so a
// late duplicate reports its precise state instead of "unknown".
type Store interface {
	Create(ctx context.Context, ch *Challenge) error
	Get(ctx context.Context, id string) (*Challenge, error)
	Consume(ctx context.Context, id string) (ConsumeResult, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

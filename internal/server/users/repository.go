package users

import (
	"context"
	"time"
)

// Repository is the persistence seam for registered users.
//
// Create must be atomic with respect to concurrent calls: exactly one call
// for a given username succeeds, the rest fail with common.ErrDuplicateUser.
// Implementations rely on the storage's own uniqueness primitive, never on a
// separate existence check.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
}

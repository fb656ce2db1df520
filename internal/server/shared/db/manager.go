// Package db wires the user registry to its storage backend and owns schema
// migrations and connectivity checks.
package db

import (
	"context"

	"github.com/dmitrijs2005/zkauth/internal/server/users"
)

// RepositoryManager hides the storage backend behind the repositories it
// provides.
type RepositoryManager interface {
	RunMigrations(context.Context) error
	Ping(context.Context) error
	Users() users.Repository
	Close() error
}

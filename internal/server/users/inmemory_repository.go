package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

// InMemoryRepository keeps users in a map guarded by a mutex. It backs
// single-process deployments and tests; uniqueness is enforced by an
// insert-if-absent under the lock.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserName]; ok {
		return nil, common.ErrDuplicateUser
	}

	stored := cloneUser(user)
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	r.users[stored.UserName] = stored

	return cloneUser(stored), nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(user), nil
}

func (r *InMemoryRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	t := at
	user.LastLoginAt = &t
	return nil
}

// cloneUser copies the record so callers never share memory with the map.
func cloneUser(u *User) *User {
	c := *u
	c.Salt = append([]byte(nil), u.Salt...)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

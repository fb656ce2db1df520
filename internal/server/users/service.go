package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/common"
	"github.com/dmitrijs2005/zkauth/internal/schnorr"
)

// Service implements the registry semantics on top of a Repository: input
// validation before any storage work, atomic duplicate detection and
// last-login bookkeeping.
type Service struct {
	repo           Repository
	group          *schnorr.Group
	maxUsernameLen int
}

func NewService(repo Repository, group *schnorr.Group, maxUsernameLen int) *Service {
	return &Service{repo: repo, group: group, maxUsernameLen: maxUsernameLen}
}

// CheckUsername validates a username against the registry rules. The same
// rules apply to registration and to challenge issuance.
func (s *Service) CheckUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return common.ErrInvalidInput
	}
	if len(username) > s.maxUsernameLen {
		return common.ErrInvalidInput
	}
	return nil
}

// Register validates and stores a new identity. The public key is parsed,
// range-checked and stored in canonical hex form; the insert is atomic, so
// a concurrent registration of the same username fails with
// common.ErrDuplicateUser.
func (s *Service) Register(ctx context.Context, username, publicKeyY string, salt []byte) (*User, error) {
	if err := s.CheckUsername(username); err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		return nil, common.ErrInvalidInput
	}
	y, err := s.group.ParseElement(publicKeyY)
	if err != nil {
		return nil, common.ErrInvalidInput
	}

	user := &User{
		UserName:   username,
		PublicKeyY: schnorr.Hex(y),
		Salt:       salt,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Lookup returns the stored identity or common.ErrorNotFound.
func (s *Service) Lookup(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// TouchLastLogin records the time of a successful login. Callers treat
// failures as non-fatal bookkeeping.
func (s *Service) TouchLastLogin(ctx context.Context, username string) error {
	return s.repo.UpdateLastLogin(ctx, username, time.Now().UTC())
}

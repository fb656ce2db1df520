package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/dmitrijs2005/zkauth/internal/common"
	"github.com/dmitrijs2005/zkauth/internal/logging"
	"github.com/dmitrijs2005/zkauth/internal/schnorr"
	"github.com/dmitrijs2005/zkauth/internal/server/challenges"
	"github.com/dmitrijs2005/zkauth/internal/server/events"
	"github.com/dmitrijs2005/zkauth/internal/server/users"
)

// fakeIdentityInfo scopes the HKDF derivation of placeholder public keys so
// the same secret key can safely be reused for token signing.
const fakeIdentityInfo = "zkauth/fake-identity/"

// ChallengeGrant is what a client gets back for a challenge request. The
// shape is identical whether or not the username is registered.
type ChallengeGrant struct {
	ChallengeID string
	Challenge   string
	ExpiresIn   int64
}

// TokenGrant is the result of a successful proof verification.
type TokenGrant struct {
	Token     string
	TokenType string
	Username  string
	ExpiresIn int64
}

// Service orchestrates the Schnorr identification flow: registration,
// challenge issuance and single-use proof verification. It owns the replay
// and anti-enumeration policy; the underlying stores only provide atomic
// primitives.
type Service struct {
	users     *users.Service
	store     challenges.Store
	group     *schnorr.Group
	publisher events.Publisher
	logger    logging.Logger

	secretKey     []byte
	tokenValidity time.Duration
	challengeTTL  time.Duration

	// opaqueVerifyErrors collapses expired/consumed/unknown challenge
	// outcomes into ErrInvalidProof, trading client usability for a
	// smaller side channel.
	opaqueVerifyErrors bool

	// now is a test seam; production code leaves it at time.Now.
	now func() time.Time
}

func NewService(us *users.Service, store challenges.Store, group *schnorr.Group,
	publisher events.Publisher, logger logging.Logger,
	secretKey string, tokenValidity, challengeTTL time.Duration, opaqueVerifyErrors bool) *Service {
	return &Service{
		users:              us,
		store:              store,
		group:              group,
		publisher:          publisher,
		logger:             logger.With("module", "auth_service"),
		secretKey:          []byte(secretKey),
		tokenValidity:      tokenValidity,
		challengeTTL:       challengeTTL,
		opaqueVerifyErrors: opaqueVerifyErrors,
		now:                time.Now,
	}
}

// Register stores a new identity. Outcomes map directly to the registry's:
// common.ErrInvalidInput, common.ErrDuplicateUser or success.
func (s *Service) Register(ctx context.Context, username, publicKeyY string, salt []byte) error {
	if _, err := s.users.Register(ctx, username, publicKeyY, salt); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Type: events.UserRegistered, Username: username})
	return nil
}

// RequestChallenge issues a single-use challenge bound to the username and
// the client's commitment. An unknown username gets a challenge backed by a
// deterministically fabricated public key, so the response shape and cost
// never reveal whether the name is registered.
func (s *Service) RequestChallenge(ctx context.Context, username, commitmentR string) (*ChallengeGrant, error) {
	if err := s.users.CheckUsername(username); err != nil {
		return nil, err
	}
	r, err := s.group.ParseElement(commitmentR)
	if err != nil {
		return nil, common.ErrInvalidInput
	}

	y, err := s.resolvePublicKey(ctx, username)
	if err != nil {
		return nil, err
	}

	c := schnorr.DeriveChallenge(s.group, r, y, username)
	now := s.now().UTC()

	ch := &challenges.Challenge{
		ID:          uuid.NewString(),
		Username:    username,
		CommitmentR: schnorr.Hex(r),
		Scalar:      schnorr.Hex(c),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.challengeTTL),
	}
	if err := s.store.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("%w: storing challenge: %w", common.ErrorInternal, err)
	}

	return &ChallengeGrant{
		ChallengeID: ch.ID,
		Challenge:   ch.Scalar,
		ExpiresIn:   int64(s.challengeTTL.Seconds()),
	}, nil
}

// VerifyProof checks a submitted response against a stored challenge and
// issues a session token on success.
//
// The challenge is consumed on the first attempt, not the first success: a
// mistyped submission burns it, and every later attempt reports
// ErrChallengeConsumed regardless of proof correctness.
func (s *Service) VerifyProof(ctx context.Context, username, challengeID, responseS, commitmentR string) (*TokenGrant, error) {
	if err := s.users.CheckUsername(username); err != nil {
		return nil, err
	}
	if challengeID == "" {
		return nil, common.ErrInvalidInput
	}
	respS, err := schnorr.ParseHex(responseS)
	if err != nil {
		return nil, common.ErrInvalidInput
	}
	// the commitment is optional on verify; when resubmitted it must parse
	var resubmittedR *big.Int
	if commitmentR != "" {
		resubmittedR, err = s.group.ParseElement(commitmentR)
		if err != nil {
			return nil, common.ErrInvalidInput
		}
	}

	ch, err := s.store.Get(ctx, challengeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, s.goneError(common.ErrUnknownChallenge)
		}
		return nil, fmt.Errorf("%w: loading challenge: %w", common.ErrorInternal, err)
	}

	if s.now().After(ch.ExpiresAt) {
		return nil, s.goneError(common.ErrExpiredChallenge)
	}

	res, err := s.store.Consume(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("%w: consuming challenge: %w", common.ErrorInternal, err)
	}
	switch res {
	case challenges.ConsumeAlready:
		return nil, s.goneError(common.ErrChallengeConsumed)
	case challenges.ConsumeNotFound:
		return nil, s.goneError(common.ErrUnknownChallenge)
	}

	// only the consume winner reaches the proof check
	if ok, err := s.checkProof(ctx, username, ch, respS, resubmittedR); err != nil {
		return nil, err
	} else if !ok {
		s.publisher.Publish(ctx, events.Event{Type: events.LoginFailed, Username: username, Reason: "invalid proof"})
		return nil, common.ErrInvalidProof
	}

	token, err := GenerateToken(username, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: issuing token: %w", common.ErrorInternal, err)
	}

	if err := s.users.TouchLastLogin(ctx, username); err != nil {
		s.logger.Warn(ctx, "updating last login failed", "username", username, "error", err)
	}
	s.publisher.Publish(ctx, events.Event{Type: events.LoginSuccess, Username: username})

	return &TokenGrant{
		Token:     token,
		TokenType: common.TokenTypeBearer,
		Username:  username,
		ExpiresIn: int64(s.tokenValidity.Seconds()),
	}, nil
}

// checkProof runs the stateless verification against the stored challenge.
// A mismatched bound identity or resubmitted commitment fails the same way a
// wrong response does; callers learn nothing beyond "invalid proof".
func (s *Service) checkProof(ctx context.Context, username string, ch *challenges.Challenge, respS, resubmittedR *big.Int) (bool, error) {
	if ch.Username != username {
		return false, nil
	}

	storedR, err := s.group.ParseElement(ch.CommitmentR)
	if err != nil {
		return false, fmt.Errorf("%w: corrupt stored commitment: %w", common.ErrorInternal, err)
	}
	if resubmittedR != nil && schnorr.Hex(resubmittedR) != ch.CommitmentR {
		return false, nil
	}

	c, err := schnorr.ParseHex(ch.Scalar)
	if err != nil {
		return false, fmt.Errorf("%w: corrupt stored scalar: %w", common.ErrorInternal, err)
	}

	y, err := s.resolvePublicKey(ctx, username)
	if err != nil {
		return false, err
	}

	return schnorr.Verify(s.group, storedR, y, c, respS), nil
}

// resolvePublicKey returns the registered public key, or a fabricated one
// for unknown usernames. The fabrication is keyed on the server secret and
// deterministic per username, so repeated requests for the same unregistered
// name behave consistently across restarts and instances.
func (s *Service) resolvePublicKey(ctx context.Context, username string) (*big.Int, error) {
	u, err := s.users.Lookup(ctx, username)
	if err == nil {
		y, perr := s.group.ParseElement(u.PublicKeyY)
		if perr != nil {
			return nil, fmt.Errorf("%w: corrupt stored public key: %w", common.ErrorInternal, perr)
		}
		return y, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: looking up user: %w", common.ErrorInternal, err)
	}

	return s.fabricatePublicKey(username), nil
}

func (s *Service) fabricatePublicKey(username string) *big.Int {
	kdf := hkdf.New(sha256.New, s.secretKey, nil, []byte(fakeIdentityInfo+username))
	seed := make([]byte, 64)
	if _, err := io.ReadFull(kdf, seed); err != nil {
		// HKDF over sha256 cannot fail for a 64-byte read
		panic(err)
	}
	x := schnorr.PrivateKeyFromSeed(s.group, seed)
	return schnorr.PublicKey(s.group, x)
}

// goneError applies the configured opacity policy to challenge lifecycle
// failures.
func (s *Service) goneError(err error) error {
	if s.opaqueVerifyErrors {
		return common.ErrInvalidProof
	}
	return err
}

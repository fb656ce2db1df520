// Package services contains the application services for the zkauth CLI.
// The authentication service runs the prover side of the identification
// protocol: key derivation, commitment, response computation.
package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/zkauth/internal/client/api"
	"github.com/dmitrijs2005/zkauth/internal/client/storage"
	"github.com/dmitrijs2005/zkauth/internal/common"
	"github.com/dmitrijs2005/zkauth/internal/cryptox"
	"github.com/dmitrijs2005/zkauth/internal/schnorr"
)

const saltSize = 16

// AuthService defines the CLI's authentication operations.
//
// Contract:
//   - Register: derive a key pair from the passphrase, create the identity
//     on the server, remember the salt locally.
//   - Login: re-derive the private key, run one commitment/challenge/response
//     round and return the issued session token.
//   - Ping: check server liveness.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username string, passphrase []byte) error
	Login(ctx context.Context, username string, passphrase []byte) (*api.Token, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client *api.Client
	group  *schnorr.Group
	salts  storage.SaltStore
}

// NewAuthService constructs an AuthService bound to the given API client and
// local salt store.
func NewAuthService(client *api.Client, salts storage.SaltStore) AuthService {
	return &authService{client: client, group: schnorr.NewGroup(), salts: salts}
}

// deriveSecret stretches the passphrase with the salt and reduces the result
// into a private scalar. The secret never leaves the process.
func (a *authService) deriveSecret(passphrase, salt []byte) *big.Int {
	seed := cryptox.DeriveKey(passphrase, salt)
	defer common.WipeByteArray(seed)
	return schnorr.PrivateKeyFromSeed(a.group, seed)
}

// Register creates a new identity on the server. The salt is stored locally
// so the same passphrase reproduces the key pair at login.
func (a *authService) Register(ctx context.Context, username string, passphrase []byte) error {
	salt := common.GenerateRandByteArray(saltSize)

	x := a.deriveSecret(passphrase, salt)
	y := schnorr.PublicKey(a.group, x)

	if err := a.client.Register(ctx, username, schnorr.Hex(y), salt); err != nil {
		return err
	}

	if err := a.salts.Save(username, salt); err != nil {
		return fmt.Errorf("registered, but saving local salt failed: %w", err)
	}
	return nil
}

// Login runs one full identification round and returns the session token.
func (a *authService) Login(ctx context.Context, username string, passphrase []byte) (*api.Token, error) {
	salt, err := a.salts.Load(username)
	if err != nil {
		return nil, fmt.Errorf("no local credentials for %q (register first on this machine): %w", username, err)
	}

	x := a.deriveSecret(passphrase, salt)

	r, commitment, err := schnorr.NewCommitment(a.group)
	if err != nil {
		return nil, err
	}

	grant, err := a.client.RequestChallenge(ctx, username, schnorr.Hex(commitment))
	if err != nil {
		return nil, err
	}

	c, err := schnorr.ParseHex(grant.Challenge)
	if err != nil {
		return nil, fmt.Errorf("server sent a malformed challenge: %w", err)
	}

	s := schnorr.ComputeResponse(a.group, r, c, x)

	return a.client.VerifyProof(ctx, username, grant.ChallengeID, schnorr.Hex(s), schnorr.Hex(commitment))
}

// Ping checks server liveness.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Health(ctx)
}

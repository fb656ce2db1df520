// Package common defines shared constants and sentinel errors used across
// client and server layers of zkauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors, raised before any state is touched.
	ErrInvalidInput = errors.New("invalid input")

	// Registration conflicts.
	ErrDuplicateUser = errors.New("user already exists")

	// Challenge lifecycle errors.
	ErrUnknownChallenge  = errors.New("unknown challenge")
	ErrExpiredChallenge  = errors.New("challenge expired")
	ErrChallengeConsumed = errors.New("challenge already consumed")

	// Proof verification failure. Deliberately carries no detail about
	// which check failed.
	ErrInvalidProof = errors.New("invalid proof")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

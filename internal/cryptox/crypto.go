// Package cryptox provides the key derivation clients use to turn a
// passphrase and salt into private key material.
package cryptox

import (
	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches a passphrase into 32 bytes of key material using
// Argon2id with the given salt. The parameters must not change between
// registration and login, or the derived private key will differ.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

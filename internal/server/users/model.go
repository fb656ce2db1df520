package users

import "time"

// User is a registered identity. The server stores only the public half of
// the key pair and the salt the client needs for key derivation; no secret
// material ever reaches the registry.
type User struct {
	ID          string
	UserName    string
	PublicKeyY  string
	Salt        []byte
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

package challenges

import "time"

// Challenge is the single-use state behind one login attempt: the identity
// it was issued for, the client's commitment, the derived scalar and the
// expiry window. CommitmentR and Scalar carry the canonical hex form the
// protocol hashes over.
type Challenge struct {
	ID          string
	Username    string
	CommitmentR string
	Scalar      string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Consumed    bool
}

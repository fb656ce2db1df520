package schnorr

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

// DeriveChallenge computes the challenge scalar c = H(R || Y || username)
// reduced mod q. R and Y enter the hash in their minimal lowercase hex form,
// so clients can reproduce the value byte for byte.
func DeriveChallenge(g *Group, commitmentR, publicKeyY *big.Int, username string) *big.Int {
	h := sha256.New()
	h.Write([]byte(Hex(commitmentR)))
	h.Write([]byte(Hex(publicKeyY)))
	h.Write([]byte(username))
	c := new(big.Int).SetBytes(h.Sum(nil))
	return c.Mod(c, g.Q)
}

// Verify checks the proof equation g^s == R * Y^c (mod p). It returns false
// for any out-of-range input and never panics; callers treat a false result
// as an invalid proof with no further detail.
func Verify(g *Group, commitmentR, publicKeyY, c, s *big.Int) bool {
	if c == nil || s == nil {
		return false
	}
	if !g.InRange(commitmentR) || !g.InRange(publicKeyY) {
		return false
	}
	if s.Sign() < 0 || s.Cmp(g.Q) >= 0 {
		return false
	}
	left := new(big.Int).Exp(g.G, s, g.P)
	right := new(big.Int).Exp(publicKeyY, c, g.P)
	right.Mul(right, commitmentR)
	right.Mod(right, g.P)
	return left.Cmp(right) == 0
}

// NewCommitment draws a fresh random nonce r from [1, q) and returns it
// together with the commitment R = g^r mod p. The nonce must be kept secret
// and never reused.
func NewCommitment(g *Group) (r, commitmentR *big.Int, err error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Sub(g.Q, big.NewInt(1)))
	if err != nil {
		return nil, nil, fmt.Errorf("drawing commitment nonce: %w", err)
	}
	r = n.Add(n, big.NewInt(1))
	return r, new(big.Int).Exp(g.G, r, g.P), nil
}

// ComputeResponse computes the prover response s = (r + c*x) mod q for
// nonce r, challenge c and private key x.
func ComputeResponse(g *Group, r, c, x *big.Int) *big.Int {
	s := new(big.Int).Mul(c, x)
	s.Add(s, r)
	return s.Mod(s, g.Q)
}

// PublicKey computes Y = g^x mod p for the private key x.
func PublicKey(g *Group, x *big.Int) *big.Int {
	return new(big.Int).Exp(g.G, x, g.P)
}

// PrivateKeyFromSeed reduces derived key material into a private scalar in
// [2, q-1]. The same seed always yields the same scalar.
func PrivateKeyFromSeed(g *Group, seed []byte) *big.Int {
	x := new(big.Int).SetBytes(seed)
	x.Mod(x, new(big.Int).Sub(g.Q, big.NewInt(2)))
	return x.Add(x, big.NewInt(2))
}

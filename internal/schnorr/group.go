// Package schnorr implements the Schnorr identification protocol over the
// RFC 3526 1536-bit MODP group: commitment and response computation on the
// prover side, challenge derivation and proof verification on the verifier
// side.
package schnorr

import (
	"errors"
	"fmt"
	"math/big"
)

// modp1536Hex is the modulus of the RFC 3526 1536-bit MODP group (group 5),
// a safe prime p = 2q+1.
const modp1536Hex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E08" +
	"8A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F143" +
	"74FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386B" +
	"FB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D" +
	"39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C" +
	"354E4ABC9804F1746C08CA237327FFFFFFFFFFFFFFFF"

// maxHexLen bounds the cost of parsing untrusted hex input; group elements
// of the 1536-bit group need at most 384 hex digits.
const maxHexLen = 1024

// Group holds the public protocol parameters: the safe prime modulus p, the
// prime subgroup order q = (p-1)/2 and the generator g of the order-q
// subgroup. Fields are read-only after construction.
type Group struct {
	P *big.Int
	Q *big.Int
	G *big.Int
}

// NewGroup returns the RFC 3526 1536-bit MODP group with generator 2.
func NewGroup() *Group {
	p, _ := new(big.Int).SetString(modp1536Hex, 16)
	q := new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)
	return &Group{P: p, Q: q, G: big.NewInt(2)}
}

// Validate checks the structural properties the protocol relies on: p and q
// are prime, p = 2q+1, and g is a valid element generating the order-q
// subgroup. It runs once at startup; a failure means the parameters are
// miswired and the process must not serve requests.
func (g *Group) Validate() error {
	if g.P == nil || g.Q == nil || g.G == nil {
		return errors.New("group parameters not initialized")
	}
	if !g.P.ProbablyPrime(64) {
		return errors.New("modulus p is not prime")
	}
	if !g.Q.ProbablyPrime(64) {
		return errors.New("subgroup order q is not prime")
	}
	safe := new(big.Int).Lsh(g.Q, 1)
	safe.Add(safe, big.NewInt(1))
	if safe.Cmp(g.P) != 0 {
		return errors.New("p is not the safe prime 2q+1")
	}
	if !g.InRange(g.G) {
		return errors.New("generator outside the valid element range")
	}
	if new(big.Int).Exp(g.G, g.Q, g.P).Cmp(big.NewInt(1)) != 0 {
		return errors.New("generator does not generate the order-q subgroup")
	}
	return nil
}

// InRange reports whether v lies strictly between 1 and p-1. The degenerate
// elements 0, 1 and p-1 would let a prover satisfy the verification equation
// without knowing a secret, so they are never accepted.
func (g *Group) InRange(v *big.Int) bool {
	if v == nil || v.Cmp(big.NewInt(1)) <= 0 {
		return false
	}
	pMinus1 := new(big.Int).Sub(g.P, big.NewInt(1))
	return v.Cmp(pMinus1) < 0
}

// ParseElement decodes a hex-encoded group element and checks that it lies
// in the valid range.
func (g *Group) ParseElement(s string) (*big.Int, error) {
	v, err := ParseHex(s)
	if err != nil {
		return nil, err
	}
	if !g.InRange(v) {
		return nil, errors.New("group element out of range")
	}
	return v, nil
}

// ParseHex decodes a hex string into a non-negative big integer. Both cases
// are accepted; signs, prefixes and separators are not.
func ParseHex(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New("empty hex value")
	}
	if len(s) > maxHexLen {
		return nil, errors.New("hex value too long")
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return nil, fmt.Errorf("invalid hex character %q", c)
		}
	}
	v, _ := new(big.Int).SetString(s, 16)
	return v, nil
}

// Hex renders v in minimal lowercase hexadecimal form. This is the exact
// representation both sides of the protocol feed into the challenge hash, so
// it must stay stable across client and server.
func Hex(v *big.Int) string {
	return v.Text(16)
}

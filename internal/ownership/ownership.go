// Package ownership implements the anonymous-ownership capability: a secret
// minted when a review is created and required to edit or delete it later.
//
// Only a BLAKE2b-256 digest of the secret is stored. The plaintext leaves the
// server exactly once, in the creation response.
package ownership

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Token is a freshly minted ownership credential.
type Token struct {
	Plain  string
	Digest []byte
}

// Issuer mints ownership tokens.
type Issuer interface {
	Issue() (Token, error)
}

type uuidIssuer struct{}

// NewIssuer returns an Issuer backed by random (version 4) UUIDs.
func NewIssuer() Issuer {
	return uuidIssuer{}
}

func (uuidIssuer) Issue() (Token, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Token{}, fmt.Errorf("generate ownership token: %w", err)
	}
	plain := id.String()
	return Token{Plain: plain, Digest: Digest(plain)}, nil
}

// Digest is the at-rest form of a token.
func Digest(token string) []byte {
	sum := blake2b.Sum256([]byte(token))
	return sum[:]
}

// Reason explains a denial.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotFound
	ReasonMissingCredential
	ReasonForbidden
)

func (r Reason) String() string {
	switch r {
	case ReasonNotFound:
		return "not_found"
	case ReasonMissingCredential:
		return "missing_credential"
	case ReasonForbidden:
		return "forbidden"
	default:
		return "none"
	}
}

// Decision is the outcome of Authorize. Reason is ReasonNone when Allowed.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision { return Decision{Allowed: true} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

// DigestLookup returns the stored digest for a review, or (nil, nil) when
// the review does not exist.
type DigestLookup interface {
	FindOwnershipDigest(ctx context.Context, id int64) ([]byte, error)
}

// Verifier decides whether a presented token may mutate a review.
type Verifier struct {
	store DigestLookup
}

func NewVerifier(store DigestLookup) *Verifier {
	return &Verifier{store: store}
}

// Authorize must complete before any mutating store call. A lookup failure
// is returned as an error and never as an allow.
func (v *Verifier) Authorize(ctx context.Context, id int64, presented string) (Decision, error) {
	stored, err := v.store.FindOwnershipDigest(ctx, id)
	if err != nil {
		return deny(ReasonNone), fmt.Errorf("authorize review %d: %w", id, err)
	}
	if stored == nil {
		return deny(ReasonNotFound), nil
	}

	if presented == "" {
		return deny(ReasonMissingCredential), nil
	}

	if subtle.ConstantTimeCompare(Digest(presented), stored) != 1 {
		return deny(ReasonForbidden), nil
	}

	return allow(), nil
}

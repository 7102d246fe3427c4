// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = 12

// MaxLength is the longest plaintext bcrypt accepts, in bytes.
const MaxLength = 72

var (
	ErrHashing = errors.New("failed to hash password")
	ErrTooLong = errors.New("password must be at most 72 bytes")
)

// Hasher produces and checks salted bcrypt digests.
type Hasher struct {
	cost int
}

func New() *Hasher {
	return &Hasher{cost: DefaultCost}
}

// NewWithCost lets tests trade strength for speed.
func NewWithCost(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a self-describing digest with a fresh random salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxLength {
		return "", ErrTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is a
// mismatch, not an error.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

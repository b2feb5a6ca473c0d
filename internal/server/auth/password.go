package auth

import (
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used unless configured otherwise.
const DefaultHashCost = 10

// PasswordHasher turns plaintext passwords into salted one-way hashes and
// checks candidates against them.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// BcryptHasher is the bcrypt-backed PasswordHasher. The salt is random per
// call and embedded in the hash, so equal passwords hash differently.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost, falling back to
// DefaultHashCost when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", common.NewError(common.ErrValidation, "password is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.NewError(common.ErrValidation, "password is too long")
		}
		return "", common.NewError(common.ErrInternal, "could not hash password").WithCause(err)
	}

	return string(hashed), nil
}

// Verify never errors: a malformed stored hash simply does not match.
func (h *BcryptHasher) Verify(plaintext, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

package app

import (
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted digest of the password. Two calls with the same
	// input return different strings.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash is a
	// mismatch, not an error.
	Verify(password, hash string) bool
}

// maxPasswordBytes is the longest input bcrypt reads. Longer passwords are
// truncated to it.
const maxPasswordBytes = 72

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given work factor. Costs below
// bcrypt.DefaultCost are raised to it.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a bcrypt hash of the password. Only the first 72 bytes are
// significant.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

// Verify compares the password against the salt and digest embedded in hash.
// bcrypt compares digests in constant time.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password)) == nil
}

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

package service

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 10
	// bcrypt ignores everything after 72 bytes
	MaxPasswordBytes = 72
)

// PasswordHasher hashes with bcrypt. The encoded hash carries cost and salt,
// so Verify needs nothing else.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Burn spends the same work as a real Verify. Login calls it for unknown
// emails so both failure paths take comparable time.
func (h *PasswordHasher) Burn(plaintext string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}

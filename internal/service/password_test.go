package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, h.Verify("secret123", hash))
	assert.False(t, h.Verify("secret124", hash))
	assert.False(t, h.Verify("secret123", "not-a-hash"))

	again, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted")

	// Burn must not panic and keeps its dummy hash across calls
	h.Burn("anything")
	h.Burn("anything else")
}

func TestNewPasswordHasher_CostBounds(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}

package auth

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, pw := range []string{"secret123", "newpass456", "ünïcødé", " spaced "} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed, "hash must not be the plaintext")
		assert.True(t, h.Verify(pw, hashed))
		assert.False(t, h.Verify(pw+"x", hashed))
	}
}

func TestBcryptHasher_SaltedPerCall(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("secret123")
	require.NoError(t, err)
	b, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("secret123", a))
	assert.True(t, h.Verify("secret123", b))
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	t.Parallel()

	hashed, err := NewBcryptHasher(0).Hash("secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, DefaultHashCost, cost)
}

func TestBcryptHasher_Errors(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = h.Hash(strings.Repeat("a", 73))
	require.ErrorIs(t, err, common.ErrValidation)

	assert.False(t, h.Verify("secret123", ""))
	assert.False(t, h.Verify("secret123", "not-a-bcrypt-hash"))
}

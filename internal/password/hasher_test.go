package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewWithCost(bcrypt.MinCost)

	digest, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", digest)
	assert.True(t, h.Verify("correct horse", digest))
	assert.False(t, h.Verify("correct horsf", digest))
	assert.False(t, h.Verify("", digest))
}

func TestHash_SaltsEachCall(t *testing.T) {
	h := NewWithCost(bcrypt.MinCost)

	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("samepassword", a))
	assert.True(t, h.Verify("samepassword", b))
}

func TestHash_TooLong(t *testing.T) {
	h := NewWithCost(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxLength+1))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxLength))
	assert.NoError(t, err)
}

func TestVerify_MalformedDigest(t *testing.T) {
	h := New()

	assert.False(t, h.Verify("anything", ""))
	assert.False(t, h.Verify("anything", "not-a-bcrypt-digest"))
}

func TestNew_UsesDefaultCost(t *testing.T) {
	digest, err := NewWithCost(bcrypt.MinCost).Hash("password1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.Equal(t, DefaultCost, New().cost)
	assert.Equal(t, DefaultCost, NewWithCost(99).cost)
}

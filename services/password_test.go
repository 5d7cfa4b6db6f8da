package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secr3t!pass")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(hash, "$"), "hash carries salt$hash segments")

	ok, err := VerifyPassword(hash, "Secr3t!pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	a, err := HashPassword("Secr3t!pass")
	require.NoError(t, err)
	b, err := HashPassword("Secr3t!pass")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each hash must use a fresh salt")
}

func TestComparePasswords(t *testing.T) {
	hash, err := HashPassword("Secr3t!pass")
	require.NoError(t, err)

	assert.True(t, ComparePasswords(hash, "Secr3t!pass"))
	assert.False(t, ComparePasswords(hash, "nope"))
	assert.False(t, ComparePasswords("not-a-hash", "anything"))
}

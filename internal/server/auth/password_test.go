package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("abcdef", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "abcdef", hash)

	ok, err := CheckPassword(hash, "abcdef")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("abcdef", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("abcdef", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hash, err := HashPassword("abcdef", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	_, err := CheckPassword("not-a-bcrypt-hash", "abcdef")
	require.Error(t, err)
}

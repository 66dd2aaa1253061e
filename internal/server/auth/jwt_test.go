package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "user-123", claims.Hasura.UserID)
	assert.Equal(t, []string{"user"}, claims.Hasura.AllowedRoles)
	assert.Equal(t, "user", claims.Hasura.DefaultRole)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGenerateToken_UsesHasuraNamespace(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := GenerateToken("u1", secret, time.Hour)
	require.NoError(t, err)

	raw := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok, raw, func(*jwt.Token) (any, error) { return secret, nil })
	require.NoError(t, err)

	ns, ok := raw[HasuraClaimsNamespace].(map[string]any)
	require.True(t, ok, "claims namespace missing: %v", raw)
	assert.Equal(t, "u1", ns["x-hasura-user-id"])
	assert.Equal(t, "user", ns["x-hasura-default-role"])
}

func TestGenerateToken_NoExpiry(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u1", []byte("k"), 0)
	require.NoError(t, err)

	claims, err := ParseToken(tok, []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u1", []byte("secret"), -1*time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("secret"))
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not.a.jwt", []byte("k"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Hasura: HasuraClaims{UserID: "u3"},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("k"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_Success(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u4", []byte("k"), time.Minute)
	require.NoError(t, err)

	id, err := GetUserIDFromToken(tok, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "u4", id)
}

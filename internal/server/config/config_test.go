package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":4000", c.ListenAddr)
	assert.Equal(t, ":50051", c.HealthAddrGRPC)
	assert.Equal(t, StoreGraphQL, c.StoreBackend)
	assert.Equal(t, "secretKey", c.JWTSecret)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, 15*time.Minute, c.ResetTokenValidityDuration)
	assert.Equal(t, 5, c.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, c.LoginAttemptWindow)
	assert.Equal(t, 10*time.Second, c.UpstreamTimeout)
	assert.Equal(t, 10, c.BcryptCost)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	for _, k := range []string{"PORT", "HASURA_GRAPHQL_ENDPOINT", "HASURA_ADMIN_SECRET", "JWT_SECRET", "STORE_BACKEND", "DATABASE_DSN", "REDIS_ADDR", "PUBLIC_RESET_URL"} {
		t.Setenv(k, "")
	}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("HASURA_GRAPHQL_ENDPOINT", "http://hasura:8080/v1/graphql")
	t.Setenv("HASURA_ADMIN_SECRET", "admin")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("STORE_BACKEND", "")

	c := &Config{StoreBackend: StorePostgres, RedisAddr: "redis:6379"}
	parseEnv(c)

	assert.Equal(t, ":5000", c.ListenAddr)
	assert.Equal(t, "http://hasura:8080/v1/graphql", c.GraphQLEndpoint)
	assert.Equal(t, "admin", c.GraphQLAdminSecret)
	assert.Equal(t, "jwt", c.JWTSecret)
	assert.Equal(t, StorePostgres, c.StoreBackend, "empty variable keeps the current value")
	assert.Equal(t, "redis:6379", c.RedisAddr)
}

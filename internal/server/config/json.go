package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authgate/internal/flagx"
	"github.com/dmitrijs2005/authgate/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	ListenAddr                 string         `json:"listen_addr"`
	HealthAddrGRPC             string         `json:"health_addr_grpc"`
	StoreBackend               string         `json:"store_backend"`
	GraphQLEndpoint            string         `json:"graphql_endpoint"`
	GraphQLAdminSecret         string         `json:"graphql_admin_secret"`
	DatabaseDSN                string         `json:"database_dsn"`
	RedisAddr                  string         `json:"redis_addr"`
	JWTSecret                  string         `json:"jwt_secret"`
	TokenValidityDuration      timex.Duration `json:"token_validity_duration"`
	ResetTokenValidityDuration timex.Duration `json:"reset_token_validity_duration"`
	PublicResetURL             string         `json:"public_reset_url"`
	LoginMaxAttempts           int            `json:"login_max_attempts"`
	LoginAttemptWindow         timex.Duration `json:"login_attempt_window"`
	UpstreamTimeout            timex.Duration `json:"upstream_timeout"`
	BcryptCost                 int            `json:"bcrypt_cost"`
}

// parseJson loads the file named by -c/-config into config. Fields missing
// from the file keep their current values. An unreadable or malformed file
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setString(&config.StoreBackend, c.StoreBackend)
	setString(&config.GraphQLEndpoint, c.GraphQLEndpoint)
	setString(&config.GraphQLAdminSecret, c.GraphQLAdminSecret)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.PublicResetURL, c.PublicResetURL)

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration > 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if c.LoginAttemptWindow.Duration > 0 {
		config.LoginAttemptWindow = c.LoginAttemptWindow.Duration
	}
	if c.UpstreamTimeout.Duration > 0 {
		config.UpstreamTimeout = c.UpstreamTimeout.Duration
	}
	if c.LoginMaxAttempts > 0 {
		config.LoginMaxAttempts = c.LoginMaxAttempts
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

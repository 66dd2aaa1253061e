package config

import (
	"github.com/caarlos0/env/v11"
)

// envConfig lists the environment variables the gateway honours.
type envConfig struct {
	Port               string `env:"PORT"`
	GraphQLEndpoint    string `env:"HASURA_GRAPHQL_ENDPOINT"`
	GraphQLAdminSecret string `env:"HASURA_ADMIN_SECRET"`
	JWTSecret          string `env:"JWT_SECRET"`
	StoreBackend       string `env:"STORE_BACKEND"`
	DatabaseDSN        string `env:"DATABASE_DSN"`
	RedisAddr          string `env:"REDIS_ADDR"`
	PublicResetURL     string `env:"PUBLIC_RESET_URL"`
}

// parseEnv overlays set, non-empty environment variables onto config.
// PORT becomes ":<port>".
func parseEnv(config *Config) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	if e.Port != "" {
		config.ListenAddr = ":" + e.Port
	}
	setString(&config.GraphQLEndpoint, e.GraphQLEndpoint)
	setString(&config.GraphQLAdminSecret, e.GraphQLAdminSecret)
	setString(&config.JWTSecret, e.JWTSecret)
	setString(&config.StoreBackend, e.StoreBackend)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.RedisAddr, e.RedisAddr)
	setString(&config.PublicResetURL, e.PublicResetURL)
}

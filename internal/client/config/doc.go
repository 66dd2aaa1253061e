// Package config loads runtime configuration for the CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   gateway base URL
//	-g string   gRPC health address
//	-d string   local database path
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
//	{
//	  "gateway_url": "http://127.0.0.1:4000",
//	  "health_addr": "127.0.0.1:50051",
//	  "database_dsn": "authgate.db",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s"
//	}
package config

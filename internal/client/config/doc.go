// Package config loads runtime configuration for the portfolio upload CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. PORTFOLIO_CLI_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string   base URL of the portfolio server
//	-e string   admin email (prompted for when empty)
//	-d int      seconds a finished upload stays on screen
//
// The first argument that is not a flag or a flag value is the file to
// upload.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "email": "owner@example.com",
//	  "reset_delay": "2s"
//	}
package config

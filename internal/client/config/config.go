package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name declared in Config's env tags.
const EnvPrefix = "PORTFOLIO_CLI_"

// Config holds runtime settings for the upload CLI.
//
// Fields:
//   - ServerURL: base URL of the portfolio server.
//   - Email: admin email used to sign in.
//   - ResetDelay: how long the finished upload stays on display.
//   - File: path of the file to upload (positional argument).
type Config struct {
	ServerURL  string        `env:"SERVER_URL"`
	Email      string        `env:"EMAIL"`
	ResetDelay time.Duration `env:"RESET_DELAY"`
	File       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.ResetDelay = 2 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}

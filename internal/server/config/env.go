package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name declared in Config's env tags.
const EnvPrefix = "PORTFOLIO_"

// parseEnv overlays PORTFOLIO_* environment variables onto config. Fields
// whose variable is unset keep their current value. Malformed values panic,
// matching the JSON loader.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}

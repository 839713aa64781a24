package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/flagx"
	"github.com/dmitrijs2005/portfolio/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields leave the current value alone.
type JsonConfig struct {
	ServerURL  *string         `json:"server_url"`
	Email      *string         `json:"email"`
	ResetDelay *timex.Duration `json:"reset_delay"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.Email != nil {
		cfg.Email = *jc.Email
	}
	if jc.ResetDelay != nil {
		cfg.ResetDelay = time.Duration(jc.ResetDelay.Duration)
	}
}

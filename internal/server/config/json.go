package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/portfolio/internal/flagx"
	"github.com/dmitrijs2005/portfolio/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Pointer
// fields distinguish "absent" from "zero", so a partial file only overrides
// what it mentions.
type JsonConfig struct {
	HTTPAddr           *string         `json:"http_addr"`
	DatabaseDSN        *string         `json:"database_dsn"`
	SecretKey          *string         `json:"secret_key"`
	S3AccessKey        *string         `json:"s3_access_key"`
	S3SecretKey        *string         `json:"s3_secret_key"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL    *string         `json:"s3_public_base_url"`
	S3UsePathStyle     *bool           `json:"s3_use_path_style"`
	AdminEmail         *string         `json:"admin_email"`
	AdminPassword      *string         `json:"admin_password"`
	LogLevel           *string         `json:"log_level"`
	TrustProxyHeaders  *bool           `json:"trust_proxy_headers"`
	LoginRatePerMinute *int            `json:"login_rate_per_minute"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c / -config into config. Nothing
// happens when neither flag is given; an unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}
	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.HTTPAddr, c.HTTPAddr)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.S3AccessKey, c.S3AccessKey)
	setIf(&config.S3SecretKey, c.S3SecretKey)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	setIf(&config.S3UsePathStyle, c.S3UsePathStyle)
	setIf(&config.AdminEmail, c.AdminEmail)
	setIf(&config.AdminPassword, c.AdminPassword)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.TrustProxyHeaders, c.TrustProxyHeaders)
	setIf(&config.LoginRatePerMinute, c.LoginRatePerMinute)
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Package config handles configuration for arthub, including defaults,
// JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidityDuration: session token lifetime.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings; empty
//     endpoint selects the in-memory blob store.
//   - GravatarBaseURL: profile lookup service base URL.
//   - ShareBaseURL: prefix for generated share links.
//   - WatchPollInterval: change-poll interval of the Postgres document store.
type Config struct {
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	GravatarBaseURL       string
	ShareBaseURL          string
	WatchPollInterval     time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 60 * time.Minute
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "arthub"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.GravatarBaseURL = "https://gravatar.com"
	c.ShareBaseURL = "https://arthub.local/s"
	c.WatchPollInterval = 500 * time.Millisecond
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the zkauth server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP API.
//   - MetricsAddr: bind address for the Prometheus metrics listener; empty
//     disables the listener.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory user
//     registry.
//   - RedisAddr: Redis address for the shared challenge store; empty selects
//     the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256) and for deriving
//     fabricated identities. Do not use test defaults in prod.
//   - TokenValidityDuration: session token lifetime.
//   - ChallengeTTL: how long an issued challenge stays verifiable.
//   - ChallengeRetention: how long an expired challenge stays visible so a
//     late verify reports its precise state instead of "unknown".
//   - SweepInterval: cadence of the expired-challenge sweep.
//   - MaxUsernameLen: upper bound on accepted username length.
//   - OpaqueVerifyErrors: when true, expired/consumed/unknown challenge
//     outcomes are all reported as an invalid proof.
type Config struct {
	EndpointAddr          string
	MetricsAddr           string
	DatabaseDSN           string
	RedisAddr             string
	SecretKey             string
	TokenValidityDuration time.Duration
	ChallengeTTL          time.Duration
	ChallengeRetention    time.Duration
	SweepInterval         time.Duration
	MaxUsernameLen        int
	OpaqueVerifyErrors    bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.MetricsAddr = ""
	c.DatabaseDSN = ""
	c.RedisAddr = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.ChallengeTTL = 5 * time.Minute
	c.ChallengeRetention = 1 * time.Minute
	c.SweepInterval = 30 * time.Second
	c.MaxUsernameLen = 64
	c.OpaqueVerifyErrors = false
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

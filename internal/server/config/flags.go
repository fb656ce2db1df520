package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-m string   metrics bind address (empty disables the listener)
//	-d string   PostgreSQL DSN (empty selects the in-memory registry)
//	-r string   Redis address (empty selects the in-memory challenge store)
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-l int      challenge TTL, seconds
//	-u int      maximum username length
//	-o bool     report expired/consumed challenges as invalid proof
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-r", "-s", "-t", "-l", "-u", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics listener address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	challengeTTL := fs.Int("l", int(config.ChallengeTTL.Seconds()), "challenge_ttl (in seconds)")

	fs.IntVar(&config.MaxUsernameLen, "u", config.MaxUsernameLen, "maximum username length")
	fs.BoolVar(&config.OpaqueVerifyErrors, "o", config.OpaqueVerifyErrors, "opaque verify errors")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.ChallengeTTL = time.Duration(*challengeTTL) * time.Second
}

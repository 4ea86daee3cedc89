package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-h string   HTTP bind address for /healthz, /metrics and /subscriptions
//	-d string   PostgreSQL DSN
//	-s string   credential HMAC secret key
//	-t int      session credential validity, minutes
//	-r int      reset credential validity, minutes
//	-k string   revocation backend: postgres | memory
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Duration flags are accepted as integers in minutes. Unknown flags (for
// example -c, which selects the JSON file) are ignored here.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")
	resetValidity := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset_token_validity_duration (in minutes)")

	fs.StringVar(&config.RevocationBackend, "k", config.RevocationBackend, "revocation backend (postgres|memory)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := flagx.ParseKnown(fs); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.ResetTokenValidityDuration = time.Duration(*resetValidity) * time.Minute
}

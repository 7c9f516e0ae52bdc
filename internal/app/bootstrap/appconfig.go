// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (GROUPHUB_*), configuration
// files, or command-line flags, loaded in LoadConfig. Ports, TLS, log level
// and CORS belong to WAFFLE's CoreConfig and are not repeated here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret        string        // HMAC key for signing tokens
	TokenTTL         time.Duration // authoritative expiry carried in the timeExp claim
	TokenEnvelopeTTL time.Duration // outer JWT exp; must not be shorter than TokenTTL

	// RequireAuth puts every route except /login and /health behind a
	// bearer token. Creating users always requires an admin token.
	RequireAuth bool

	// Login attempts allowed per client IP per minute. Zero disables the limiter.
	LoginRatePerMinute int

	// Audit logging: all, db, log, or off
	AuditLogAuth  string
	AuditLogAdmin string

	// How long audit events are kept in Mongo. Zero keeps them forever.
	AuditRetention time.Duration

	// Admin bootstrap. When AdminEmail is set, Startup makes sure an admin
	// with that email exists.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Per-request database timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

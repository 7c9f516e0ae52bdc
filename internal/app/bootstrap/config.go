// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/dalemusser/grouphub/internal/app/system/auditlog"
	"github.com/dalemusser/grouphub/internal/app/system/auth"
	"github.com/dalemusser/grouphub/internal/app/system/authutil"
	"github.com/dalemusser/grouphub/internal/app/system/inputval"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is the out-of-the-box signing key. It is refused in prod.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minJWTSecretLen is the shortest HS256 key accepted.
const minJWTSecretLen = 32

// appConfigKeys defines the configuration keys for GroupHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: GROUPHUB_MONGO_URI, GROUPHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "grouphub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Token signing key (at least 32 bytes; must be changed in production)"},
	{Name: "token_ttl", Default: "1h", Desc: "Token lifetime enforced by the server"},
	{Name: "token_envelope_ttl", Default: "2h", Desc: "Outer JWT expiry (must be >= token_ttl)"},

	// Access control
	{Name: "require_auth", Default: false, Desc: "Require a bearer token on every route except /login and /health"},
	{Name: "login_rate_per_minute", Default: 10, Desc: "Login attempts allowed per client IP per minute (0 disables)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "audit_retention", Default: "0s", Desc: "Delete audit events older than this (e.g. 2160h); 0 keeps them"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of an admin user to create or promote on startup"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created bootstrap admin"},
	{Name: "admin_name", Default: "Administrator", Desc: "Name for a newly created bootstrap admin"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document database operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for multi-collection writes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, GROUPHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GROUPHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:        appValues.String("jwt_secret"),
		TokenTTL:         appValues.Duration("token_ttl", auth.DefaultTokenTTL),
		TokenEnvelopeTTL: appValues.Duration("token_envelope_ttl", auth.DefaultEnvelopeTTL),

		RequireAuth:        appValues.Bool("require_auth"),
		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		AuditRetention: appValues.Duration("audit_retention", 0),

		AdminEmail:    normalize.Email(appValues.String("admin_email")),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// GroupHub checks the MongoDB URI format before attempting to connect, and
// refuses token or admin settings that cannot work.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateAppConfig(coreCfg.Env, appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	if appCfg.JWTSecret == devJWTSecret {
		logger.Warn("using the development jwt_secret; set GROUPHUB_JWT_SECRET before deploying")
	}
	return nil
}

// validateAppConfig holds the checks that do not need a logger.
func validateAppConfig(env string, appCfg AppConfig) error {
	var errs []error

	if appCfg.MongoDatabase == "" {
		errs = append(errs, errors.New("mongo_database must be set"))
	}

	if len(appCfg.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d bytes", minJWTSecretLen))
	}
	if env == "prod" && appCfg.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("jwt_secret must be changed from the development default in prod"))
	}
	if appCfg.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if appCfg.TokenEnvelopeTTL < appCfg.TokenTTL {
		errs = append(errs, fmt.Errorf("token_envelope_ttl (%s) must not be shorter than token_ttl (%s)",
			appCfg.TokenEnvelopeTTL, appCfg.TokenTTL))
	}

	if appCfg.LoginRatePerMinute < 0 {
		errs = append(errs, errors.New("login_rate_per_minute must not be negative"))
	}

	if !auditlog.ValidMode(appCfg.AuditLogAuth) {
		errs = append(errs, fmt.Errorf("audit_log_auth %q must be all, db, log, or off", appCfg.AuditLogAuth))
	}
	if !auditlog.ValidMode(appCfg.AuditLogAdmin) {
		errs = append(errs, fmt.Errorf("audit_log_admin %q must be all, db, log, or off", appCfg.AuditLogAdmin))
	}
	if appCfg.AuditRetention < 0 {
		errs = append(errs, errors.New("audit_retention must not be negative"))
	}

	if appCfg.AdminEmail != "" && !inputval.IsValidEmail(appCfg.AdminEmail) {
		errs = append(errs, fmt.Errorf("admin_email %q is not a valid email address", appCfg.AdminEmail))
	}
	if !authutil.IsHash(appCfg.AdminPassword) && !authutil.PasswordFits(appCfg.AdminPassword) {
		errs = append(errs, fmt.Errorf("admin_password must be at most %d bytes", authutil.MaxPasswordBytes))
	}
	if (appCfg.AdminEmail == "") != (appCfg.AdminPassword == "") {
		errs = append(errs, errors.New("admin_email and admin_password must be set together"))
	}

	return errors.Join(errs...)
}

// timeoutConfig adapts AppConfig to the timeouts package.
func (c AppConfig) timeoutConfig() timeouts.Config {
	return timeouts.Config{
		Short:  c.TimeoutShort,
		Medium: c.TimeoutMedium,
		Long:   c.TimeoutLong,
	}
}

// tokenConfig adapts AppConfig to the token manager.
func (c AppConfig) tokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:      []byte(c.JWTSecret),
		TokenTTL:    c.TokenTTL,
		EnvelopeTTL: c.TokenEnvelopeTTL,
		Issuer:      "grouphub",
	}
}

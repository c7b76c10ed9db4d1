// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/auditlog"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is the shipped default; ValidateConfig refuses it in prod.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for CrisisHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CRISISHUB_MONGO_URI, CRISISHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "crisis_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "JWT signing secret (at least 32 characters; must be changed in production)"},
	{Name: "jwt_expiry", Default: "168h", Desc: "JWT lifetime (e.g., 168h)"},

	// One-time codes
	{Name: "otp_expiry", Default: "5m", Desc: "Emailed one-time code lifetime (e.g., 5m, 10m)"},
	{Name: "pending_signup_ttl", Default: "24h", Desc: "Unfinished signups older than this are deleted"},
	{Name: "pending_cleanup_interval", Default: "1h", Desc: "How often unfinished signups are purged"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank logs emails instead of sending)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@crisishub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "CrisisHub", Desc: "From display name"},
	{Name: "site_name", Default: "CrisisHub", Desc: "Product name used in email subjects"},

	// Reporting
	{Name: "report_timezone", Default: "UTC", Desc: "IANA time zone for report months and days (e.g., America/Chicago)"},
	{Name: "recent_accounts_limit", Default: 10, Desc: "Number of recent accounts listed on the dashboard"},
	{Name: "report_timeout", Default: "30s", Desc: "Deadline for building one report"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CRISISHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CRISISHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTExpiry: appValues.Duration("jwt_expiry", 7*24*time.Hour),

		OTPExpiry:              appValues.Duration("otp_expiry", 5*time.Minute),
		PendingSignupTTL:       appValues.Duration("pending_signup_ttl", 24*time.Hour),
		PendingCleanupInterval: appValues.Duration("pending_cleanup_interval", time.Hour),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
		SiteName:     appValues.String("site_name"),

		ReportTimezone:      appValues.String("report_timezone"),
		RecentAccountsLimit: appValues.Int("recent_accounts_limit"),
		ReportTimeout:       appValues.Duration("report_timeout", 30*time.Second),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems are caught here, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if len(appCfg.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("jwt_secret must be at least %d characters", auth.MinSecretLength)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.JWTSecret == devJWTSecret {
		return fmt.Errorf("jwt_secret must be changed from the development default in production")
	}
	if appCfg.JWTExpiry <= 0 {
		return fmt.Errorf("jwt_expiry must be positive")
	}
	if appCfg.OTPExpiry <= 0 {
		return fmt.Errorf("otp_expiry must be positive")
	}
	if appCfg.PendingSignupTTL <= 0 || appCfg.PendingCleanupInterval <= 0 {
		return fmt.Errorf("pending_signup_ttl and pending_cleanup_interval must be positive")
	}

	if _, err := reportLocation(appCfg.ReportTimezone); err != nil {
		return err
	}
	if appCfg.RecentAccountsLimit <= 0 {
		return fmt.Errorf("recent_accounts_limit must be positive")
	}

	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		if !auditlog.ValidMode(v) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}

	return nil
}

// reportLocation loads the report time zone. "Local" is refused because its
// name is not an IANA zone and MongoDB date operators cannot resolve it.
func reportLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid report_timezone %q: %w", name, err)
	}
	if loc.String() == "Local" {
		return nil, fmt.Errorf("invalid report_timezone %q: use an IANA zone name such as America/Chicago", name)
	}
	return loc, nil
}

// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries what is specific to CrisisHub: the MongoDB
// connection, token signing, one-time codes, outgoing mail and the
// reporting calendar.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HMAC signing secret, at least 32 characters
	JWTExpiry time.Duration // token lifetime (default 7 days)

	// One-time codes and pending signups
	OTPExpiry              time.Duration // lifetime of an emailed code (default 5m)
	PendingSignupTTL       time.Duration // unfinished signups older than this are purged
	PendingCleanupInterval time.Duration // how often the purge runs

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (blank logs emails instead of sending)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string // From email address
	MailFromName string // From display name
	SiteName     string // product name in email subjects

	// Reporting
	ReportTimezone      string        // IANA zone for calendar months and days
	RecentAccountsLimit int           // dashboard recent-accounts sample size
	ReportTimeout       time.Duration // per-report deadline

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string
}

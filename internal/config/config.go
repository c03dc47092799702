// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// Notification providers accepted by NOTIFY_PROVIDER.
const (
	NotifyLog     = "log"
	NotifyWebhook = "webhook"
	NotifyMailgun = "mailgun"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the REST server listens on (e.g. :3001).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health listener. Empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// StoreDriver selects the ledger backend: memory, postgres, sqlite or redis.
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	// DatabaseURL is the Postgres DSN; required when StoreDriver is postgres.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string `mapstructure:"SQLITE_PATH"`
	// RedisURL is the redis:// URL; required when StoreDriver is redis.
	RedisURL string `mapstructure:"REDIS_URL"`

	// MongoURI is the resume document store URI. Empty disables the resume routes.
	MongoURI string `mapstructure:"MONGODB_URI"`
	// MongoDatabase is the resume database name.
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`

	// AdminEmails is the comma-separated administrator allow-list.
	AdminEmails string `mapstructure:"ADMIN_EMAILS"`
	// SessionTTL is how long a session stays authorized after OTP verification (e.g. "15m").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// OTPLength is the number of digits in an issued code.
	OTPLength int `mapstructure:"OTP_LENGTH"`
	// OTPTTL is how long an unconsumed code remains verifiable (e.g. "10m").
	OTPTTL string `mapstructure:"OTP_TTL"`
	// OTPHashCost is the bcrypt cost used to store codes (4–31).
	OTPHashCost int `mapstructure:"OTP_HASH_COST"`
	// OTPReturnToClient when true enables dev OTP mode: no email, OTP stored for GET /dev/otp.
	// Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`

	// NotifyProvider selects the notification channel: log, webhook or mailgun.
	NotifyProvider string `mapstructure:"NOTIFY_PROVIDER"`
	// NotifyTimeout bounds a single dispatch (e.g. "10s").
	NotifyTimeout string `mapstructure:"NOTIFY_TIMEOUT"`
	// MailFrom is the sender address for OTP mails.
	MailFrom string `mapstructure:"MAIL_FROM"`
	// MailSubject is the subject line of OTP mails.
	MailSubject string `mapstructure:"MAIL_SUBJECT"`
	// WebhookURL receives {to, subject, body} JSON when NotifyProvider is webhook.
	WebhookURL string `mapstructure:"WEBHOOK_URL"`
	// WebhookAPIKey is sent in the Authorization header of webhook requests.
	WebhookAPIKey string `mapstructure:"WEBHOOK_API_KEY"`
	// MailgunDomain is the sending domain for the mailgun provider.
	MailgunDomain string `mapstructure:"MAILGUN_DOMAIN"`
	// MailgunAPIKey is the private API key for the mailgun provider.
	MailgunAPIKey string `mapstructure:"MAILGUN_API_KEY"`
	// MailgunAPIBase overrides the Mailgun API base (e.g. the EU region endpoint).
	MailgunAPIBase string `mapstructure:"MAILGUN_API_BASE"`

	// GrantPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file used to sign verification grants.
	// Empty generates an ephemeral key at startup; grants then do not survive a restart.
	GrantPrivateKey string `mapstructure:"GRANT_PRIVATE_KEY"`
	// GrantPublicKey is the PEM-encoded public key or path to file; used with GRANT_PRIVATE_KEY.
	GrantPublicKey string `mapstructure:"GRANT_PUBLIC_KEY"`
	// GrantIssuer is the iss claim of verification grants.
	GrantIssuer string `mapstructure:"GRANT_ISSUER"`
	// GrantAudience is the aud claim of verification grants.
	GrantAudience string `mapstructure:"GRANT_AUDIENCE"`
	// GrantTTL is the lifetime of a verification grant (e.g. "2m").
	GrantTTL string `mapstructure:"GRANT_TTL"`

	// PolicyPath is an optional rego file replacing the default privileged-action policy.
	PolicyPath string `mapstructure:"POLICY_PATH"`

	// GalleryDir is the root directory of the image file store.
	GalleryDir string `mapstructure:"GALLERY_DIR"`
	// UploadMaxBytes caps a single uploaded image.
	UploadMaxBytes int64 `mapstructure:"UPLOAD_MAX_BYTES"`
	// CORSAllowedOrigins is a comma-separated list of allowed origins ("*" for any).
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// Gate events (optional). When Kafka brokers are set, the server emits gate events to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsTopic is the Kafka topic for gate events.
	EventsTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the events worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the events worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3001")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "gate.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "resume_database")
	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("SESSION_TTL", "15m")
	v.SetDefault("OTP_LENGTH", 5)
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_HASH_COST", 10)
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("NOTIFY_PROVIDER", NotifyLog)
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("MAIL_FROM", "no-reply@localhost")
	v.SetDefault("MAIL_SUBJECT", "Your admin login code")
	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_API_KEY", "")
	v.SetDefault("MAILGUN_DOMAIN", "")
	v.SetDefault("MAILGUN_API_KEY", "")
	v.SetDefault("MAILGUN_API_BASE", "")
	v.SetDefault("GRANT_PRIVATE_KEY", "")
	v.SetDefault("GRANT_PUBLIC_KEY", "")
	v.SetDefault("GRANT_ISSUER", "portfolio-gate")
	v.SetDefault("GRANT_AUDIENCE", "portfolio-admin")
	v.SetDefault("GRANT_TTL", "2m")
	v.SetDefault("POLICY_PATH", "")
	v.SetDefault("GALLERY_DIR", "images")
	v.SetDefault("UPLOAD_MAX_BYTES", 10000000)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "gate-events")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "gate-events-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL must be set when STORE_DRIVER=postgres")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("config: REDIS_URL must be set when STORE_DRIVER=redis")
		}
	default:
		return nil, errors.New("config: STORE_DRIVER must be one of memory, postgres, sqlite, redis")
	}

	cfg.NotifyProvider = strings.ToLower(strings.TrimSpace(cfg.NotifyProvider))
	switch cfg.NotifyProvider {
	case NotifyLog:
	case NotifyWebhook:
		if cfg.WebhookURL == "" {
			return nil, errors.New("config: WEBHOOK_URL must be set when NOTIFY_PROVIDER=webhook")
		}
	case NotifyMailgun:
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			return nil, errors.New("config: MAILGUN_DOMAIN and MAILGUN_API_KEY must be set when NOTIFY_PROVIDER=mailgun")
		}
	default:
		return nil, errors.New("config: NOTIFY_PROVIDER must be one of log, webhook, mailgun")
	}

	if len(cfg.AdminEmailList()) == 0 {
		return nil, errors.New("config: ADMIN_EMAILS must contain at least one address")
	}

	if cfg.OTPLength == 0 {
		cfg.OTPLength = 5
	}
	if cfg.OTPLength < 4 || cfg.OTPLength > 9 {
		return nil, errors.New("config: OTP_LENGTH must be between 4 and 9")
	}

	if cfg.OTPHashCost == 0 {
		cfg.OTPHashCost = 10
	}
	if cfg.OTPHashCost < 4 || cfg.OTPHashCost > 31 {
		return nil, errors.New("config: OTP_HASH_COST must be between 4 and 31")
	}

	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 10000000
	}

	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

// SessionDuration parses SessionTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) SessionDuration() time.Duration {
	return parseDuration(c.SessionTTL, 15*time.Minute)
}

// OTPDuration parses OTPTTL as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) OTPDuration() time.Duration {
	return parseDuration(c.OTPTTL, 10*time.Minute)
}

// NotifyDuration parses NotifyTimeout as a time.Duration. Returns 10s if unset or invalid.
func (c *Config) NotifyDuration() time.Duration {
	return parseDuration(c.NotifyTimeout, 10*time.Second)
}

// GrantDuration parses GrantTTL as a time.Duration. Returns 2m if unset or invalid.
func (c *Config) GrantDuration() time.Duration {
	return parseDuration(c.GrantTTL, 2*time.Minute)
}

// AdminEmailList returns the lower-cased, trimmed administrator allow-list.
func (c *Config) AdminEmailList() []string {
	if c == nil {
		return nil
	}
	return splitList(strings.ToLower(c.AdminEmails))
}

// CORSOrigins returns the allowed CORS origins. Defaults to "*" when unset.
func (c *Config) CORSOrigins() []string {
	if c == nil {
		return []string{"*"}
	}
	out := splitList(c.CORSAllowedOrigins)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if gate events are exported (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

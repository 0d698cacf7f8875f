package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Row-store and mail backends selectable at startup.
const (
	RowStoreDynamo   = "dynamo"
	RowStorePostgres = "postgres"

	MailDriverSMTP    = "smtp"
	MailDriverMailgun = "mailgun"
	MailDriverQueue   = "queue"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort     string
	AppEnv      string
	FrontendURL string // base of the verification link

	RowStore       string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	DatabaseURL    string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseJWTSecret  string // mints service tokens when no static key is set

	MailDriver       string
	MailFromName     string
	SMTPHost         string
	SMTPPort         string
	SMTPFrom         string
	SMTPUsername     string
	SMTPPassword     string
	MailgunDomain    string
	MailgunAPIKey    string
	MailgunSender    string
	RabbitMQURL      string
	RabbitEmailQueue string

	PendingTTL     time.Duration // zero keeps pending registrations forever
	ClaimLease     time.Duration
	BcryptCost     int
	AllowedOrigins []string // CORS allowed origins
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-Ip.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	PendingRegistrations string
	Users                string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:     getEnv("APP_PORT", "4000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		RowStore:       getEnv("ROW_STORE", RowStoreDynamo),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			PendingRegistrations: getEnv("DYNAMO_TABLE_PENDING_USERS", "pending_users"),
			Users:                getEnv("DYNAMO_TABLE_USERS", "users"),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SupabaseURL:        strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),

		MailDriver:       getEnv("MAIL_DRIVER", MailDriverSMTP),
		MailFromName:     getEnv("MAIL_FROM_NAME", "MedSkill Support"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "1025"),
		SMTPFrom:         getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		MailgunDomain:    getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:    getEnv("MAILGUN_API_KEY", ""),
		MailgunSender:    getEnv("MAILGUN_SENDER", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitEmailQueue: getEnv("RABBITMQ_EMAIL_QUEUE", "email_jobs"),

		PendingTTL:     getEnvDuration("PENDING_TTL", 0),
		ClaimLease:     getEnvDuration("CLAIM_LEASE", 30*time.Second),
		BcryptCost:     getEnvInt("BCRYPT_COST", 10),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("72h", "30s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

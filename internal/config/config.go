package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Appointment admission
	MaxAppointmentsPerDay int
	BookingLockWait       time.Duration
	AvailabilityHorizon   int // days

	// Session / auth
	SessionJWTSecret string
	SessionTTL       time.Duration

	// Password reset
	ResetTokenTTL time.Duration

	// Notifications
	AdminEmail        string
	EmailProvider     string // "sendgrid", "ses" or "stub"
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
	UseMemoryQueue    bool
	WorkerCount       int
	NotifyQueueURL    string

	// AWS (SES + SQS)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Analytics data exports
	PopulationCSVPath    string
	PrecipitationCSVPath string

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		MaxAppointmentsPerDay: getEnvAsInt("MAX_APPOINTMENTS_PER_DAY", 10),
		BookingLockWait:       getEnvAsDuration("BOOKING_LOCK_WAIT", 5*time.Second),
		AvailabilityHorizon:   getEnvAsInt("AVAILABILITY_HORIZON_DAYS", 30),

		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 12*time.Hour),

		ResetTokenTTL: getEnvAsDuration("RESET_TOKEN_TTL", 5*time.Minute),

		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "no-reply@saludgo.local"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "SaludGo"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", "no-reply@saludgo.local"),
		SESFromName:       getEnv("SES_FROM_NAME", "SaludGo"),
		UseMemoryQueue:    getEnvAsBool("USE_MEMORY_QUEUE", true),
		WorkerCount:       getEnvAsInt("WORKER_COUNT", 2),
		NotifyQueueURL:    getEnv("NOTIFY_QUEUE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		PopulationCSVPath:    getEnv("POPULATION_CSV_PATH", "data/population_projections.csv"),
		PrecipitationCSVPath: getEnv("PRECIPITATION_CSV_PATH", "data/monthly_precipitation.csv"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
	}
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate normalizes values that must stay sane for the process lifetime.
func (c *Config) Validate() {
	if c.MaxAppointmentsPerDay <= 0 {
		c.MaxAppointmentsPerDay = 10
	}
	if c.BookingLockWait <= 0 {
		c.BookingLockWait = 5 * time.Second
	}
	if c.AvailabilityHorizon <= 0 {
		c.AvailabilityHorizon = 30
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

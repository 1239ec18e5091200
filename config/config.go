// Package config loads and validates application configuration from
// environment variables. Required variables, default values, and parse
// failures are all reported collectively so a misconfigured deployment fails
// once with the full list instead of dying one variable at a time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig holds settings for the PostgreSQL connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds session and password-reset settings.
type AuthConfig struct {
	JWTSecret       string        // secret key for signing session tokens
	SessionDuration time.Duration // lifetime of an issued session token
	ResetCodeTTL    time.Duration // lifetime of a password-reset code
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// MailConfig holds SMTP settings for outbound mail.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string // From header, e.g. "EntreFlow <no-reply@example.com>"
}

// StorageConfig holds object-storage settings for image uploads.
type StorageConfig struct {
	Endpoint      string // optional custom endpoint (minio, localstack)
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // base URL under which uploaded objects are reachable
}

// GoogleConfig holds OAuth client settings for the Google enrollment path.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// RateLimitConfig holds per-client limits for credential endpoints.
type RateLimitConfig struct {
	CredentialPerMinute int // forgot-password / login requests per minute per client
	CredentialBurst     int
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB        *PoolConfig
	Auth      *AuthConfig
	Server    *ServerConfig
	Mail      *MailConfig
	Storage   *StorageConfig
	Google    *GoogleConfig
	RateLimit *RateLimitConfig
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size within sane bounds.
func clampPoolSize(size int, varName string, errs *[]string) int {
	if size < 2 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is less than minimum 2, clamping to 2", varName, size))
		return 2
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig creates an AppConfig from environment variables. All errors
// encountered while loading are aggregated into a single error.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	// Database
	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs), "DB_POOL_SIZE", &errs)

	dbConfig := &PoolConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	// Auth
	authConfig := &AuthConfig{
		JWTSecret:       getRequiredEnv("JWT_SECRET", &errs),
		SessionDuration: getOptionalEnvDuration("SESSION_DURATION", 168*time.Hour, &errs), // 7 days
		ResetCodeTTL:    getOptionalEnvDuration("RESET_CODE_TTL", 10*time.Minute, &errs),
	}

	// Server
	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	// Mail (SMTP)
	mailConfig := &MailConfig{
		Host:     getRequiredEnv("SMTP_HOST", &errs),
		Port:     getOptionalEnvInt("SMTP_PORT", 587, &errs),
		Username: getRequiredEnv("SMTP_USER", &errs),
		Password: getRequiredEnv("SMTP_PASS", &errs),
		Sender:   getOptionalEnv("SMTP_SENDER", "EntreFlow <no-reply@entreflow.dev>"),
	}

	// Object storage
	storageConfig := &StorageConfig{
		Endpoint:      getOptionalEnv("S3_ENDPOINT", ""),
		Region:        getOptionalEnv("S3_REGION", "us-east-1"),
		Bucket:        getRequiredEnv("S3_BUCKET", &errs),
		AccessKey:     getRequiredEnv("S3_ACCESS_KEY", &errs),
		SecretKey:     getRequiredEnv("S3_SECRET_KEY", &errs),
		PublicBaseURL: getRequiredEnv("S3_PUBLIC_BASE_URL", &errs),
	}

	// Google OAuth
	googleConfig := &GoogleConfig{
		ClientID:     getRequiredEnv("GOOGLE_CLIENT_ID", &errs),
		ClientSecret: getRequiredEnv("GOOGLE_CLIENT_SECRET", &errs),
		RedirectURL:  getRequiredEnv("GOOGLE_REDIRECT_URL", &errs),
	}

	// Rate limiting
	rateLimitConfig := &RateLimitConfig{
		CredentialPerMinute: getOptionalEnvInt("RATE_LIMIT_CREDENTIAL_PER_MINUTE", 10, &errs),
		CredentialBurst:     getOptionalEnvInt("RATE_LIMIT_CREDENTIAL_BURST", 10, &errs),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:        dbConfig,
		Auth:      authConfig,
		Server:    serverConfig,
		Mail:      mailConfig,
		Storage:   storageConfig,
		Google:    googleConfig,
		RateLimit: rateLimitConfig,
	}, nil
}

// Package config reads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"kudos/internal/upload"
)

// Config holds all configuration for the service.
type Config struct {
	Addr     string
	Env      string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	// Object storage
	S3Endpoint      string
	BucketRegion    string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string

	MaxUploadBytes int64 // 0 disables the limit
	UploadRate     int   // avatar uploads per minute per client IP

	IdentityHeader string
	CORSOrigins    []string
	// TrustProxy takes the client IP from X-Real-IP / X-Forwarded-For.
	// Only set it behind a proxy that overwrites those headers.
	TrustProxy bool

	OTLPEndpoint string

	Version string
	Commit  string
}

// Load reads configuration from environment variables, after loading .env
// if one is present. Every invalid setting is reported in a single error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	if err := Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:     getenvDefault("KUDOS_ADDR", ":8080"),
		Env:      getenvDefault("KUDOS_ENV", "development"),
		LogLevel: getenvDefault("KUDOS_LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		S3Endpoint:      getenvDefault("KUDOS_S3_ENDPOINT", "localhost:9000"),
		BucketRegion:    os.Getenv("KUDOS_BUCKET_REGION"),
		AccessKeyID:     os.Getenv("KUDOS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("KUDOS_SECRET_ACCESS_KEY"),
		BucketName:      getenvDefault("KUDOS_BUCKET_NAME", "avatars"),
		PublicBaseURL:   os.Getenv("KUDOS_PUBLIC_BASE_URL"),

		MaxUploadBytes: 5 << 20,
		UploadRate:     10,

		IdentityHeader: getenvDefault("KUDOS_IDENTITY_HEADER", "X-User-Id"),
		CORSOrigins:    splitList(getenvDefault("KUDOS_CORS_ORIGINS", "*")),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		Version: getenvDefault("KUDOS_VERSION", "dev"),
		Commit:  getenvDefault("KUDOS_COMMIT", "unknown"),
	}

	// Validate has already checked these parse.
	if v := os.Getenv("KUDOS_MAX_UPLOAD_BYTES"); v != "" {
		cfg.MaxUploadBytes, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := os.Getenv("KUDOS_UPLOAD_RATE"); v != "" {
		cfg.UploadRate, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("KUDOS_TRUST_PROXY"); v != "" {
		cfg.TrustProxy, _ = strconv.ParseBool(v)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Minio returns the object storage settings.
func (c *Config) Minio() upload.MinioConfig {
	return upload.MinioConfig{
		Endpoint:      c.S3Endpoint,
		Region:        c.BucketRegion,
		AccessKey:     c.AccessKeyID,
		SecretKey:     c.SecretAccessKey,
		Bucket:        c.BucketName,
		PublicBaseURL: c.PublicBaseURL,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, entry := range strings.Split(s, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validator collects configuration problems so they can be reported together.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

// AddError adds a validation error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorString returns a formatted string of all errors.
func (v *Validator) ErrorString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d error(s):\n", len(v.errors))
	for i, err := range v.errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidateRequired validates that a required environment variable is set.
func (v *Validator) ValidateRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		v.AddError(key, "required environment variable not set")
	}
	return value
}

// ValidateURL checks value parses with one of the allowed schemes. Empty
// values are skipped.
func (v *Validator) ValidateURL(key, value string, schemes ...string) {
	if value == "" {
		return
	}

	parsed, err := url.Parse(value)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid URL format: %v", err))
		return
	}

	for _, s := range schemes {
		if parsed.Scheme == s {
			if parsed.Host == "" {
				v.AddError(key, "URL has no host")
			}
			return
		}
	}
	v.AddError(key, fmt.Sprintf("URL must use one of: %s", strings.Join(schemes, ", ")))
}

// ValidateAddr validates a listen address of the form "host:port" or ":port".
func (v *Validator) ValidateAddr(key, value string) {
	if value == "" {
		return
	}

	i := strings.LastIndex(value, ":")
	if i < 0 {
		v.AddError(key, "address must include a port")
		return
	}

	port, err := strconv.Atoi(value[i+1:])
	if err != nil {
		v.AddError(key, "port must be a number")
		return
	}

	if port < 1 || port > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
}

// ValidateEnum validates that a value is one of allowed options.
func (v *Validator) ValidateEnum(key, value string, allowed []string) {
	if value == "" {
		return
	}

	for _, opt := range allowed {
		if value == opt {
			return
		}
	}

	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// ValidatePositiveInt validates that a value is a positive integer.
func (v *Validator) ValidatePositiveInt(key, value string) {
	if value == "" {
		return
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return
	}

	if num <= 0 {
		v.AddError(key, "must be a positive integer")
	}
}

// ValidateNonNegativeInt validates that a value is zero or a positive integer.
func (v *Validator) ValidateNonNegativeInt(key, value string) {
	if value == "" {
		return
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return
	}

	if num < 0 {
		v.AddError(key, "must not be negative")
	}
}

// ValidateBool validates that a value parses as a boolean.
func (v *Validator) ValidateBool(key, value string) {
	if value == "" {
		return
	}
	if _, err := strconv.ParseBool(value); err != nil {
		v.AddError(key, "must be true or false")
	}
}

// Validate checks every KUDOS_ setting and the service URLs.
func Validate() error {
	v := NewValidator()

	env := os.Getenv("KUDOS_ENV")
	v.ValidateEnum("KUDOS_ENV", env, []string{"development", "production", "staging"})
	v.ValidateEnum("KUDOS_LOG_LEVEL", os.Getenv("KUDOS_LOG_LEVEL"), []string{"debug", "info", "warn", "error"})

	// Outside development an in-memory store is never acceptable.
	if env == "production" || env == "staging" {
		v.ValidateRequired("DATABASE_URL")
		v.ValidateRequired("KUDOS_ACCESS_KEY_ID")
		v.ValidateRequired("KUDOS_SECRET_ACCESS_KEY")
	}

	v.ValidateURL("DATABASE_URL", os.Getenv("DATABASE_URL"), "postgres", "postgresql")
	v.ValidateURL("REDIS_URL", os.Getenv("REDIS_URL"), "redis", "rediss")
	v.ValidateURL("KUDOS_PUBLIC_BASE_URL", os.Getenv("KUDOS_PUBLIC_BASE_URL"), "http", "https")
	v.ValidateAddr("KUDOS_ADDR", os.Getenv("KUDOS_ADDR"))

	// Can be host:port or URL
	if endpoint := os.Getenv("KUDOS_S3_ENDPOINT"); strings.Contains(endpoint, "://") {
		v.ValidateURL("KUDOS_S3_ENDPOINT", endpoint, "http", "https")
	}

	v.ValidateNonNegativeInt("KUDOS_MAX_UPLOAD_BYTES", os.Getenv("KUDOS_MAX_UPLOAD_BYTES"))
	v.ValidatePositiveInt("KUDOS_UPLOAD_RATE", os.Getenv("KUDOS_UPLOAD_RATE"))
	v.ValidateBool("KUDOS_TRUST_PROXY", os.Getenv("KUDOS_TRUST_PROXY"))

	if h := os.Getenv("KUDOS_IDENTITY_HEADER"); strings.ContainsAny(h, " :\t") {
		v.AddError("KUDOS_IDENTITY_HEADER", "must be a bare header name")
	}

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}
	return nil
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// An empty restrictive field (API key, origin list, MIME list, size limit)
// means that restriction is disabled.
type AppConfig struct {
	AppPort       string
	UploadDir     string
	PublicBaseURL string

	// Upload policy
	APIKey           string
	AllowedOrigins   []string
	MaxSizeMB        int64
	AllowedMimeTypes []string
	TrustedMimeTypes []string

	// Webhook notifications
	WebhookURL      string
	WebhookSendLink bool

	// Metadata sidecars
	SaveMetadata bool

	// CORS
	CORSAllowedOrigins []string
	CORSMaxAgeHours    int

	RateLimitPerMinute int
	Debug              bool

	// Gin framework configuration
	GinMode string
	GinPath string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration from environment variables. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Reset clears the cached configuration so tests can reload with a fresh environment.
func Reset() {
	cfg = AppConfig{}
	loaded = false
}

// MaxSizeBytes returns the configured upload limit in bytes, 0 when unlimited.
func (c AppConfig) MaxSizeBytes() int64 {
	return c.MaxSizeMB * 1024 * 1024
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.UploadDir == "" {
		c.UploadDir = "./uploads"
	}
	if len(c.TrustedMimeTypes) == 0 {
		c.TrustedMimeTypes = []string{"audio/mpeg"}
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if c.CORSMaxAgeHours == 0 {
		c.CORSMaxAgeHours = 12
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 120
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/access.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("UPLOAD_DIR", ""); v != "" {
		c.UploadDir = v
	}
	if v := getEnv("PUBLIC_BASE_URL", ""); v != "" {
		c.PublicBaseURL = strings.TrimRight(v, "/")
	}
	if v := getEnv("API_KEY", ""); v != "" {
		c.APIKey = v
	}
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("MAX_SIZE_MB", ""); v != "" {
		c.MaxSizeMB = int64(mustParseInt(v))
	}
	if v := getEnv("ALLOWED_MIME_TYPES", ""); v != "" {
		c.AllowedMimeTypes = splitAndTrim(v)
	}
	if v := getEnv("TRUSTED_MIME_TYPES", ""); v != "" {
		c.TrustedMimeTypes = splitAndTrim(v)
	}
	if v := getEnv("WEBHOOK_URL", ""); v != "" {
		c.WebhookURL = v
	}
	if v := getEnv("WEBHOOK_SEND_LINK", ""); v != "" {
		c.WebhookSendLink = v == "true"
	}
	if v := getEnv("SAVE_METADATA", ""); v != "" {
		c.SaveMetadata = v == "true"
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.CORSAllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("CORS_MAX_AGE_HOURS", ""); v != "" {
		c.CORSMaxAgeHours = mustParseInt(v)
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("DEBUG", ""); v != "" {
		c.Debug = v == "true"
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

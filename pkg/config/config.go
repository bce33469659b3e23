package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DBDriver    string
	DatabaseURL string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	FrontendURL string
	CORSOrigins []string

	ShareCodeTTL time.Duration

	FirebaseCredentials string
	ReminderInterval    time.Duration
	ReminderLead        time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	frontendURL := strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/")

	return &Config{
		Port:     getEnv("PORT", "5000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres dbname=minimalist sslmode=disable"),

		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 168*time.Hour), // 7 days
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 720*time.Hour),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback"),

		FrontendURL: frontendURL,
		CORSOrigins: splitOrigins(getEnv("CORS_ORIGINS", frontendURL)),

		ShareCodeTTL: getDuration("SHARE_CODE_TTL", 5*time.Minute),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		ReminderInterval:    getDuration("REMINDER_INTERVAL", time.Minute),
		ReminderLead:        getDuration("REMINDER_LEAD", time.Hour),
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// GoogleConfigured reports whether both OAuth client credentials are present.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// UsesDefaultSecret is true when JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// OriginAllowed reports whether origin may make cross-origin requests.
// A "*" entry in CORS_ORIGINS allows any origin.
func (c *Config) OriginAllowed(origin string) bool {
	return c.AllowsAnyOrigin() || c.OriginListed(origin)
}

// AllowsAnyOrigin reports whether CORS_ORIGINS contains "*".
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// OriginListed reports whether origin is FRONTEND_URL or spelled out in
// CORS_ORIGINS. The wildcard never matches here, so the result is safe for
// choosing where to send tokens.
func (c *Config) OriginListed(origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if origin == "" || origin == "*" {
		return false
	}
	if strings.EqualFold(c.FrontendURL, origin) {
		return true
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, p := range strings.Split(raw, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

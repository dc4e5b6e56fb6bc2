package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Remote commerce API.
	APIBaseURL     string
	StoreSlug      string
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration

	// Cookie lifetimes, configured in minutes like the rest of the stack.
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CartTTL         time.Duration
	WishlistTTL     time.Duration
	AnalyticIDTTL   time.Duration

	AnalyticsEnabled bool
	SecureCookies    bool

	// Optional Postgres DSN for the server-side client-state mirror.
	DBConnString string

	CORSOrigins []string
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: envSeconds("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),

		APIBaseURL:     strings.TrimRight(envOrDefault("API_BASE_URL", "http://localhost:9000"), "/"),
		StoreSlug:      envOrDefault("STORE_SLUG", "store"),
		ClientID:       envOrDefault("OAUTH_CLIENT_ID", ""),
		ClientSecret:   envOrDefault("OAUTH_CLIENT_SECRET", ""),
		RequestTimeout: envSeconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second),

		AccessTokenTTL:  envMinutes("ACCESS_TOKEN_EXPIRY_MINUTES", 59*time.Minute),
		RefreshTokenTTL: envMinutes("REFRESH_TOKEN_EXPIRY_MINUTES", 43200*time.Minute),
		CartTTL:         envMinutes("CART_ALIVE_MINUTES", 525600*time.Minute),
		WishlistTTL:     envMinutes("WISHLIST_ALIVE_MINUTES", 525600*time.Minute),
		AnalyticIDTTL:   envMinutes("ANALYTIC_ID_EXPIRY_MINUTES", 525600*time.Minute),

		AnalyticsEnabled: envBool("ANALYTICS_ENABLED", true),
		SecureCookies:    envBool("SECURE_COOKIES", false),

		DBConnString: envOrDefault("DB_DSN", ""),

		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envMinutes(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		minutes, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err == nil {
			return parsed
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT issued by the identity provider; only verified here
	JWTSecret    string
	OfficerRoles []string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	// Report history timestamps are rendered in this zone
	Location *time.Location

	// Live stream
	StreamKeepalive      time.Duration
	StreamMaxSubscribers int
	StreamBuffer         int

	// Reconciliation
	SeedOnEmpty     bool
	PlaceholderSeed bool
	SeedResidentID  string

	// Logging
	LogRetention time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "incident_desk"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		OfficerRoles: parseCSV(getEnv("OFFICER_ROLES", "Police Chief,Crime Analyst,Police Officer,Administrator")),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		Location: parseLocation(getEnv("APP_TIMEZONE", "Local")),

		StreamKeepalive:      parseDuration(getEnv("STREAM_KEEPALIVE", "30s"), 30*time.Second),
		StreamMaxSubscribers: parseInt(getEnv("STREAM_MAX_SUBSCRIBERS", "256"), 256),
		StreamBuffer:         parseInt(getEnv("STREAM_BUFFER", "32"), 32),

		SeedOnEmpty:     parseBool(getEnv("SEED_ON_EMPTY", "false")),
		PlaceholderSeed: parseBool(getEnv("PLACEHOLDER_SEED", "true")),
		SeedResidentID:  getEnv("SEED_RESIDENT_ID", "00000000-0000-0000-0000-000000000001"),

		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func parseLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown APP_TIMEZONE, falling back to local time", "zone", name, "error", err)
		return time.Local
	}
	return loc
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

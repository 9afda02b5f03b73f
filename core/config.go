package core

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend names accepted by CREDENTIAL_STORE and SESSION_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds runtime settings for the gateway process.
type Config struct {
	Host              string   // HTTP listen host (empty = all interfaces)
	Port              string   // HTTP listen port (e.g., "5000")
	GinMode           string   // debug/release/test
	SessionKey        string   // Cookie signing key
	CookieSecure      bool     // Whether to set Secure flag on session cookie
	CookieSameSite    string   // SameSite policy: Strict/Lax/None
	CookieMaxAge      int      // Cookie lifetime in seconds
	LogDir            string   // Directory to write application logs (empty = stdout only)
	CredentialBackend string   // memory/postgres/redis
	SessionBackend    string   // memory/redis
	DatabaseURL       string   // PostgreSQL DSN
	DBSync            bool     // create the accounts table at startup
	RedisURL          string   // Redis URL (redis://host:port/db)
	AllowedOrigins    []string // allowed origins for CORS (empty = any)
	SeedAccountsPath  string   // optional YAML file with accounts to create at startup
}

// Load populates Config from environment variables with sane defaults.
// A .env file in the working directory is read first when present;
// variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Host:              os.Getenv("HOST"),
		Port:              firstNonEmpty(os.Getenv("PORT"), "5000"),
		GinMode:           firstNonEmpty(os.Getenv("GIN_MODE"), "debug"),
		SessionKey:        firstNonEmpty(os.Getenv("SESSION_KEY"), "change-this-session-key"),
		CookieSecure:      boolFromEnv("COOKIE_SECURE", false),
		CookieSameSite:    firstNonEmpty(os.Getenv("COOKIE_SAMESITE"), "Lax"),
		CookieMaxAge:      intFromEnv("COOKIE_MAX_AGE", 86400),
		LogDir:            os.Getenv("LOG_DIR"),
		CredentialBackend: strings.ToLower(firstNonEmpty(os.Getenv("CREDENTIAL_STORE"), BackendMemory)),
		SessionBackend:    strings.ToLower(firstNonEmpty(os.Getenv("SESSION_BACKEND"), BackendMemory)),
		DatabaseURL:       firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("POSTGRES_URL"), "postgres://postgres@localhost:5432/pheonix?sslmode=disable"),
		DBSync:            boolFromEnv("DB_SYNC", true),
		RedisURL:          firstNonEmpty(os.Getenv("REDIS_URL"), "redis://localhost:6379/0"),
		AllowedOrigins:    parseCSV(os.Getenv("ALLOWED_ORIGINS")),
		SeedAccountsPath:  os.Getenv("SEED_ACCOUNTS_PATH"),
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// boolFromEnv reads a boolean from env var name, falling back to defaultVal when empty or invalid.
func boolFromEnv(name string, defaultVal bool) bool {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// intFromEnv reads an int from env var name, falling back to defaultVal when empty or invalid.
func intFromEnv(name string, defaultVal int) int {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// parseCSV splits comma-separated list and trims spaces; empty entries are skipped.
func parseCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

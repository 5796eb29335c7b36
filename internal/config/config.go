package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	GinMode     string
	DatabaseURL string
	JWTSecret   string

	LogLevel string
	LogJSON  bool

	// comma separated in env, credentials are always allowed
	CORSAllowedOrigins []string
	// Secure + SameSite=None on the session cookie, needed when the frontend
	// lives on another origin over https
	CookieSecure bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration
	TaskRateLimit  int
	TaskRateWindow time.Duration

	MigrateOnStart bool
}

// Load reads .env (if present) and the process environment.
// DATABASE_URL and JWT_SECRET are mandatory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return &Config{
		AppPort:     getEnv("APP_PORT", "5000"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvAsBool("LOG_JSON", false),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		CookieSecure:       getEnvAsBool("COOKIE_SECURE", false),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AuthRateLimit:  getEnvAsInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: time.Duration(getEnvAsInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		TaskRateLimit:  getEnvAsInt("TASK_RATE_LIMIT", 120),
		TaskRateWindow: time.Duration(getEnvAsInt("TASK_RATE_WINDOW_SECONDS", 60)) * time.Second,

		MigrateOnStart: getEnvAsBool("MIGRATE_ON_START", true),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// non-positive and unparsable values fall back to the default
func getEnvAsInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getEnvAsBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Env  string
	Port string

	DatabaseDriver    string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxIdleTime time.Duration
	DBConnectTimeout  time.Duration

	JWTSecret      string
	JWTTTL         time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	LogLevel       string
}

var defaults = map[string]any{
	"APP_ENV":               "development",
	"PORT":                  "8080",
	"DATABASE_DRIVER":       "postgres",
	"DATABASE_URL":          "",
	"DB_MAX_OPEN_CONNS":     20,
	"DB_MAX_IDLE_CONNS":     5,
	"DB_CONN_MAX_IDLE_TIME": "30s",
	"DB_CONNECT_TIMEOUT":    "2s",
	"JWT_SECRET":            "",
	"JWT_TTL":               "168h",
	"REQUEST_TIMEOUT":       "15s",
	"CORS_ORIGIN":           "http://localhost:3000",
	"LOG_LEVEL":             "info",
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Env:               v.GetString("APP_ENV"),
		Port:              v.GetString("PORT"),
		DatabaseDriver:    strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		DBConnectTimeout:  v.GetDuration("DB_CONNECT_TIMEOUT"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTTTL:            v.GetDuration("JWT_TTL"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGIN")),
		LogLevel:          v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and coherent
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.DBMaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

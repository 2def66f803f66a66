package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-print-erp/internal/logger"
)

// Seller is the business identity printed in an invoice's "from" block
// when the client does not send one.
type Seller struct {
	Name    string
	Address string
	Phone   string
	GSTIN   string
}

type Config struct {
	Env  string
	Port string

	// Database
	DBDriver string // mysql, sqlite
	DBDSN    string
	DBDebug  bool

	// Auth
	JWTSecret         string
	TokenTTL          time.Duration
	AllowRegistration bool

	// HTTP
	CORSOrigins []string
	BaseURL     string
	UploadDir   string

	// Assistant
	GeminiAPIKey string

	Seller Seller

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment. Call godotenv.Load
// before this if a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:             getEnv("DB_DSN", ""),
		DBDebug:           getBool("DB_DEBUG", false),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenTTL:          getDuration("TOKEN_TTL", 24*time.Hour),
		AllowRegistration: getBool("ALLOW_REGISTRATION", false),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		Seller: Seller{
			Name:    getEnv("SELLER_NAME", "Print Studio"),
			Address: getEnv("SELLER_ADDRESS", ""),
			Phone:   getEnv("SELLER_PHONE", ""),
			GSTIN:   getEnv("SELLER_GSTIN", ""),
		},
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if cfg.DBDriver == "sqlite" && cfg.DBDSN == "" {
		cfg.DBDSN = "print-erp.db"
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "dev_secret_for_print_erp"
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, def bool) bool {
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

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"facturatie/internal/core"
	"facturatie/internal/logger"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Business holds the settings a company tunes: reminders, fallback rates and
// the accounts invoice journals are previewed against. It can come from YAML.
type Business struct {
	Reminders     core.ReminderThresholds `yaml:"reminders"`
	FallbackRates core.ExchangeRateSet    `yaml:"fallback_rates"`
	Accounts      core.PostingAccounts    `yaml:"accounts"`
}

// DefaultBusiness returns the settings used when no YAML file is given.
func DefaultBusiness() Business {
	return Business{
		Reminders: core.DefaultReminderThresholds(),
		FallbackRates: core.ExchangeRateSet{
			EURToSRD: decimal.RequireFromString("38.50"),
			USDToSRD: decimal.RequireFromString("35.50"),
		},
		Accounts: core.DefaultPostingAccounts(),
	}
}

type Config struct {
	Port           string
	AllowedOrigins []string
	MaxBodyBytes   int64

	JWTSecret string

	BackendURL     string
	BackendTimeout time.Duration

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RatesCacheTTL time.Duration

	StrictNumericInput bool

	Log logger.LogConfig

	Business Business
}

// Load reads the environment and, when FACTURATIE_CONFIG names a file, the
// business settings in it. Missing YAML keys keep their defaults.
func Load() (Config, error) {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		MaxBodyBytes:       int64(getInt("MAX_BODY_BYTES", 1<<20)),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:8001"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 30*time.Second),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		RatesCacheTTL:      getDuration("RATES_CACHE_TTL", time.Hour),
		StrictNumericInput: getBool("STRICT_NUMERIC_INPUT", false),
		Log: logger.LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "console"),
			TimeFormat: time.RFC3339,
			Output:     getEnv("LOG_OUTPUT", "stderr"),
		},
		Business: DefaultBusiness(),
	}

	if path := os.Getenv("FACTURATIE_CONFIG"); path != "" {
		b, err := LoadBusiness(path, cfg.Business)
		if err != nil {
			return Config{}, err
		}
		cfg.Business = b
	}
	return cfg, nil
}

// LoadBusiness overlays the YAML file at path onto base.
func LoadBusiness(path string, base Business) (Business, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Business{}, fmt.Errorf("failed to read config file: %w", err)
	}
	b := base
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Business{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if !b.FallbackRates.Valid() {
		return Business{}, errors.New("fallback_rates must be positive")
	}
	return b, nil
}

// ValidateServe checks what the HTTP server needs before it starts.
func (c Config) ValidateServe() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be set and at least 32 characters")
	}
	if c.BackendURL == "" {
		return errors.New("BACKEND_URL must be set")
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Contribution ContributionConfig
	Payroll      PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	Timezone       *time.Location
	AllowedOrigins []string
}

// ContributionConfig points at the statutory contribution calculator.
type ContributionConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type PayrollConfig struct {
	OvertimeMultiplier decimal.Decimal
	WorkerLimit        int
	// Cron specs for the cutoff runs, evaluated in App.Timezone.
	FirstCutoffSpec  string
	SecondCutoffSpec string
	CronEnabled      bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeclock_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	timezone, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Asia/Manila"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "timeclock-payroll"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       timezone,
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Contribution calculator
	contributionTimeout, err := time.ParseDuration(getEnv("CONTRIBUTION_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONTRIBUTION_TIMEOUT: %w", err)
	}

	config.Contribution = ContributionConfig{
		BaseURL: getEnv("CONTRIBUTION_BASE_URL", ""),
		APIKey:  getEnv("CONTRIBUTION_API_KEY", ""),
		Timeout: contributionTimeout,
	}

	// Payroll configuration
	multiplier, err := decimal.NewFromString(getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.25"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_OVERTIME_MULTIPLIER: %w", err)
	}

	workerLimit, err := strconv.Atoi(getEnv("PAYROLL_WORKER_LIMIT", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKER_LIMIT: %w", err)
	}

	cronEnabled, err := strconv.ParseBool(getEnv("PAYROLL_CRON_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_CRON_ENABLED: %w", err)
	}

	config.Payroll = PayrollConfig{
		OvertimeMultiplier: multiplier,
		WorkerLimit:        workerLimit,
		FirstCutoffSpec:    getEnv("PAYROLL_FIRST_CUTOFF_SPEC", "0 2 16 * *"),
		SecondCutoffSpec:   getEnv("PAYROLL_SECOND_CUTOFF_SPEC", "0 2 1 * *"),
		CronEnabled:        cronEnabled,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Contribution.BaseURL == "" {
		return fmt.Errorf("CONTRIBUTION_BASE_URL is required")
	}
	if c.Payroll.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("PAYROLL_OVERTIME_MULTIPLIER must be at least 1")
	}
	if c.Payroll.WorkerLimit < 1 {
		return fmt.Errorf("PAYROLL_WORKER_LIMIT must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Enrollment policies.
const (
	EnrollOnPurchase = "on_purchase"
	EnrollExplicit   = "explicit"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Completion CompletionConfig `mapstructure:"completion"`
	Challenges ChallengesConfig `mapstructure:"challenges"`
	Rotation   RotationConfig   `mapstructure:"rotation"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig contains session token settings.
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	// Migrations selects "sql" (embedded golang-migrate files) or "auto" (gorm AutoMigrate).
	Migrations string `mapstructure:"migrations"`
}

// DSN returns the PostgreSQL key/value connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the PostgreSQL URL form used by golang-migrate.
func (c *PostgresConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// CacheConfig controls the product catalog read-through cache.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	ProductTTL time.Duration `mapstructure:"product_ttl"`
}

// CompletionConfig configures the external text-completion service.
type CompletionConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChallengesConfig contains challenge evaluation and enrollment settings.
type ChallengesConfig struct {
	Timezone         string            `mapstructure:"timezone"`
	EnrollmentPolicy string            `mapstructure:"enrollment_policy"`
	Rules            RulesConfig       `mapstructure:"rules"`
	Templates        []TemplateConfig  `mapstructure:"templates"`
	BadgeIcons       map[string]string `mapstructure:"badge_icons"`
}

// RulesConfig holds the completion threshold per frequency.
type RulesConfig struct {
	DailyOrders   int     `mapstructure:"daily_orders"`
	WeeklyCarbon  float64 `mapstructure:"weekly_carbon_kg"`
	MonthlyOrders int     `mapstructure:"monthly_orders"`
}

// TemplateConfig describes a challenge created once per period by the rotation job.
type TemplateConfig struct {
	Frequency   string  `mapstructure:"frequency"`
	Name        string  `mapstructure:"name"`
	Description string  `mapstructure:"description"`
	Type        string  `mapstructure:"type"`
	TargetValue float64 `mapstructure:"target_value"`
}

// RotationConfig contains the challenge rotation daemon settings.
type RotationConfig struct {
	Schedule      string `mapstructure:"schedule"` // Cron expression or HH:MM; empty runs once
	RetireExpired bool   `mapstructure:"retire_expired"`
}

// NotifyConfig contains webhook announcement settings.
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Username   string `mapstructure:"username"`
	Enabled    bool   `mapstructure:"enabled"`
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.cookie_name", "AmazonGreen")

	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.postgres.migrations", "sql")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.product_ttl", 10*time.Minute)

	v.SetDefault("completion.base_url", "https://api.openai.com")
	v.SetDefault("completion.model", "gpt-3.5-turbo-instruct")
	v.SetDefault("completion.timeout", 30*time.Second)

	v.SetDefault("challenges.timezone", "Local")
	v.SetDefault("challenges.enrollment_policy", EnrollOnPurchase)
	v.SetDefault("challenges.rules.daily_orders", 1)
	v.SetDefault("challenges.rules.weekly_carbon_kg", 5.0)
	v.SetDefault("challenges.rules.monthly_orders", 10)
	v.SetDefault("challenges.badge_icons", map[string]string{
		"daily":   "https://cdn-icons-png.flaticon.com/512/190/190411.png",
		"weekly":  "https://cdn-icons-png.flaticon.com/512/190/190406.png",
		"monthly": "https://cdn-icons-png.flaticon.com/512/190/190416.png",
	})
	v.SetDefault("challenges.templates", []map[string]interface{}{
		{"frequency": "daily", "name": "Eco Daily Action", "description": "Complete one eco-friendly action today!", "type": "ecoScore", "target_value": 10},
		{"frequency": "weekly", "name": "Weekly CO2 Saver", "description": "Save 5kg of CO2 this week!", "type": "co2Saved", "target_value": 5},
		{"frequency": "monthly", "name": "Monthly Green Shopper", "description": "Buy 3 eco-friendly products this month!", "type": "moneySaved", "target_value": 3},
	})

	v.SetDefault("rotation.retire_expired", true)

	v.SetDefault("notify.username", "Green Partner")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory is applied to the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/amazon-green/")
	}

	// Server configuration
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// Auth configuration
	_ = v.BindEnv("auth.jwt_secret", "SECRET_KEY", "JWT_SECRET")
	_ = v.BindEnv("auth.token_ttl", "AUTH_TOKEN_TTL")
	_ = v.BindEnv("auth.cookie_name", "AUTH_COOKIE_NAME")
	_ = v.BindEnv("auth.cookie_secure", "AUTH_COOKIE_SECURE")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.migrations", "POSTGRES_MIGRATIONS")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")

	// Completion service configuration
	_ = v.BindEnv("completion.base_url", "COMPLETION_BASE_URL")
	_ = v.BindEnv("completion.api_key", "COMPLETION_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("completion.model", "COMPLETION_MODEL")
	_ = v.BindEnv("completion.timeout", "COMPLETION_TIMEOUT")

	// Challenge configuration
	_ = v.BindEnv("challenges.timezone", "CHALLENGES_TIMEZONE")
	_ = v.BindEnv("challenges.enrollment_policy", "CHALLENGES_ENROLLMENT_POLICY")
	_ = v.BindEnv("rotation.schedule", "ROTATION_SCHEDULE")
	_ = v.BindEnv("rotation.retire_expired", "ROTATION_RETIRE_EXPIRED")

	// Notification configuration
	_ = v.BindEnv("notify.webhook_url", "NOTIFY_WEBHOOK_URL")
	_ = v.BindEnv("notify.channel", "NOTIFY_CHANNEL")
	_ = v.BindEnv("notify.enabled", "NOTIFY_ENABLED")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Read config file; a missing default file is fine when everything comes from env.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Cache.Enabled && c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required when cache is enabled")
	}
	switch c.Database.Postgres.Migrations {
	case "sql", "auto":
	default:
		return fmt.Errorf("database.postgres.migrations must be sql or auto, got %q", c.Database.Postgres.Migrations)
	}
	switch c.Challenges.EnrollmentPolicy {
	case EnrollOnPurchase, EnrollExplicit:
	default:
		return fmt.Errorf("challenges.enrollment_policy must be %s or %s, got %q",
			EnrollOnPurchase, EnrollExplicit, c.Challenges.EnrollmentPolicy)
	}
	if c.Challenges.Rules.DailyOrders < 1 || c.Challenges.Rules.MonthlyOrders < 1 || c.Challenges.Rules.WeeklyCarbon <= 0 {
		return fmt.Errorf("challenges.rules thresholds must be positive")
	}
	if _, err := c.Challenges.GetLocation(); err != nil {
		return fmt.Errorf("invalid challenges.timezone %q: %w", c.Challenges.Timezone, err)
	}
	if c.Notify.Enabled && c.Notify.WebhookURL == "" {
		return fmt.Errorf("notify.webhook_url is required when notify is enabled")
	}

	return nil
}

// GetLocation returns the timezone used for challenge windows.
func (c *ChallengesConfig) GetLocation() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// GetTemplate returns the rotation template for a frequency.
func (c *ChallengesConfig) GetTemplate(frequency string) *TemplateConfig {
	for i := range c.Templates {
		if c.Templates[i].Frequency == frequency {
			return &c.Templates[i]
		}
	}
	return nil
}

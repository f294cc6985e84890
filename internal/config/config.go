package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Upstream    UpstreamConfig
	Catalog     CatalogConfig
	Session     SessionConfig
	Chat        ChatConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// UpstreamConfig points at the remote product, post, shop and user APIs
type UpstreamConfig struct {
	ProductsURL        string
	PostsURL           string
	ShopsURL           string
	UsersURL           string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// CatalogConfig controls how remote payloads are normalized
type CatalogConfig struct {
	CurrencyRate      decimal.Decimal
	CurrencyCode      string
	CurrencyPrecision int32
	DefaultImageURL   string
}

type SessionConfig struct {
	TTL       time.Duration
	TokenCost int
}

type ChatConfig struct {
	AppKey string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	baseURL := getEnvOrViper("API_BASE_URL", "")

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "feedshop"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Upstream: UpstreamConfig{
			ProductsURL: getEnvOrViper("PRODUCTS_API_URL", baseURL),
			PostsURL:    getEnvOrViper("POSTS_API_URL", baseURL),
			ShopsURL:    getEnvOrViper("SHOPS_API_URL", baseURL),
			UsersURL:    getEnvOrViper("USERS_API_URL", baseURL),
		},
		Catalog: CatalogConfig{
			CurrencyCode:    getEnvOrViper("CURRENCY_CODE", "USD"),
			DefaultImageURL: getEnvOrViper("DEFAULT_IMAGE_URL", "/static/placeholder.png"),
		},
		Chat: ChatConfig{
			AppKey: getEnvOrViper("CHAT_APP_KEY", ""),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Upstream.Timeout, err = getDuration("UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Upstream.BreakerOpenTimeout, err = getDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	failures, err := getInt("BREAKER_MAX_FAILURES", 5)
	if err != nil {
		return nil, err
	}
	if failures < 1 {
		return nil, fmt.Errorf("BREAKER_MAX_FAILURES must be at least 1")
	}
	cfg.Upstream.BreakerMaxFailures = uint32(failures)

	if cfg.Catalog.CurrencyRate, err = decimal.NewFromString(getEnvOrViper("CURRENCY_RATE", "1")); err != nil {
		return nil, fmt.Errorf("invalid CURRENCY_RATE: %w", err)
	}
	precision, err := getInt("CURRENCY_PRECISION", 2)
	if err != nil {
		return nil, err
	}
	cfg.Catalog.CurrencyPrecision = int32(precision)

	if cfg.Session.TTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Session.TokenCost, err = getInt("SESSION_TOKEN_COST", 10); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.Upstream.ProductsURL == "" || c.Upstream.PostsURL == "" ||
		c.Upstream.ShopsURL == "" || c.Upstream.UsersURL == "" {
		return fmt.Errorf("API_BASE_URL is required unless every *_API_URL is set")
	}
	if !c.Catalog.CurrencyRate.IsPositive() {
		return fmt.Errorf("CURRENCY_RATE must be positive")
	}
	if c.Catalog.CurrencyPrecision < 0 {
		return fmt.Errorf("CURRENCY_PRECISION must not be negative")
	}
	if c.Upstream.BreakerMaxFailures == 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

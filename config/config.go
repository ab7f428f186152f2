package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Version is the service version reported by health checks
const Version = "1.0.0"

// Config holds all application configuration
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Analysis cache configuration
	Cache CacheConfig

	// Market data collection configuration
	Collector CollectorConfig

	// External service configurations
	Alpaca      AlpacaConfig
	OpenWeather OpenWeatherConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host     string
	Port     int
	Debug    bool
	LogLevel string
}

// Addr returns the listen address in host:port form
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheConfig holds analysis cache configuration
type CacheConfig struct {
	Type            string // memory or redis; redis falls back to memory
	TTLSeconds      int
	CleanupInterval time.Duration
}

// TTL returns the cache entry lifetime as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// CollectorConfig holds market data collection configuration
type CollectorConfig struct {
	EquitySource   string // yahoo or alpaca
	CryptoExchange string // binance or bybit
	TimeoutSeconds int
	PoolSize       int
	MaxDataPoints  int
}

// Timeout returns the per-collection deadline as a duration
func (c CollectorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AlpacaConfig holds Alpaca API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

// OpenWeatherConfig holds OpenWeatherMap API configuration
type OpenWeatherConfig struct {
	APIKey string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:     getEnvString("HOST", "localhost"),
			Port:     getEnvInt("PORT", 8000),
			Debug:    getEnvBool("DEBUG", true),
			LogLevel: getEnvString("LOG_LEVEL", "INFO"),
		},
		Cache: CacheConfig{
			Type:            getEnvString("CACHE_TYPE", "memory"),
			TTLSeconds:      getEnvInt("DATA_CACHE_TTL", 900),
			CleanupInterval: time.Duration(getEnvInt("CACHE_CLEANUP_MINUTES", 10)) * time.Minute,
		},
		Collector: CollectorConfig{
			EquitySource:   getEnvString("EQUITY_SOURCE", "yahoo"),
			CryptoExchange: getEnvString("CRYPTO_EXCHANGE", "binance"),
			TimeoutSeconds: getEnvInt("COLLECTOR_TIMEOUT_SECONDS", 30),
			PoolSize:       getEnvInt("COLLECTOR_POOL_SIZE", 2),
			MaxDataPoints:  getEnvInt("MAX_DATA_POINTS", 1000),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
			BaseURL:   getEnvString("ALPACA_BASE_URL", "https://paper-api.alpaca.markets"),
		},
		OpenWeather: OpenWeatherConfig{
			APIKey: os.Getenv("OPEN_WEATHER_MAP_API_KEY"),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Collector.EquitySource {
	case "yahoo", "alpaca":
	default:
		return fmt.Errorf("EQUITY_SOURCE must be yahoo or alpaca, got %q", c.Collector.EquitySource)
	}

	switch c.Collector.CryptoExchange {
	case "binance", "bybit":
	default:
		return fmt.Errorf("CRYPTO_EXCHANGE must be binance or bybit, got %q", c.Collector.CryptoExchange)
	}

	if c.Collector.TimeoutSeconds <= 0 {
		return fmt.Errorf("COLLECTOR_TIMEOUT_SECONDS must be positive, got %d", c.Collector.TimeoutSeconds)
	}
	if c.Collector.PoolSize <= 0 {
		return fmt.Errorf("COLLECTOR_POOL_SIZE must be positive, got %d", c.Collector.PoolSize)
	}
	if c.Collector.MaxDataPoints <= 0 {
		return fmt.Errorf("MAX_DATA_POINTS must be positive, got %d", c.Collector.MaxDataPoints)
	}

	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("DATA_CACHE_TTL must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.Cache.CleanupInterval <= 0 {
		return fmt.Errorf("CACHE_CLEANUP_MINUTES must be positive, got %v", c.Cache.CleanupInterval)
	}

	return nil
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasOpenWeather returns true if OpenWeatherMap configuration is available
func (c *Config) HasOpenWeather() bool {
	return c.OpenWeather.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "localhost",
			Port:     8000,
			Debug:    true,
			LogLevel: "INFO",
		},
		Cache: CacheConfig{
			Type:            "memory",
			TTLSeconds:      900,
			CleanupInterval: 10 * time.Minute,
		},
		Collector: CollectorConfig{
			EquitySource:   "yahoo",
			CryptoExchange: "binance",
			TimeoutSeconds: 30,
			PoolSize:       2,
			MaxDataPoints:  1000,
		},
		Alpaca: AlpacaConfig{
			APIKey:    "",
			APISecret: "",
			BaseURL:   "https://paper-api.alpaca.markets",
		},
		OpenWeather: OpenWeatherConfig{
			APIKey: "",
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: "*",
		},
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Thresholds  ThresholdsConfig  `mapstructure:"thresholds"`
	Server      ServerConfig      `mapstructure:"server"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// OpenWeatherConfig holds OpenWeatherMap API configuration
type OpenWeatherConfig struct {
	APIBaseURL      string        `mapstructure:"api_base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Units           string        `mapstructure:"units"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// ThresholdsConfig holds the cut-offs that turn measurements into evidence bits
type ThresholdsConfig struct {
	TemperatureC float64 `mapstructure:"temperature_c"`
	HumidityPct  int     `mapstructure:"humidity_pct"`
	CloudKeyword string  `mapstructure:"cloud_keyword"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr               string        `mapstructure:"addr"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// StorageConfig holds report history configuration
type StorageConfig struct {
	DBPath         string        `mapstructure:"db_path"`
	MaxReports     int           `mapstructure:"max_reports"`
	RotateInterval time.Duration `mapstructure:"rotate_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file, a .env file and environment
// variables prefixed with WHETHERAI_ (e.g. WHETHERAI_OPENWEATHER_API_KEY).
func Load(path string) (*Config, error) {
	// A missing .env is fine; existing environment variables win.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("WHETHERAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// Every key needs a default so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	// OpenWeatherMap defaults
	v.SetDefault("openweather.api_base_url", "https://api.openweathermap.org")
	v.SetDefault("openweather.api_key", "")
	v.SetDefault("openweather.units", "metric")
	v.SetDefault("openweather.timeout", "10s")
	v.SetDefault("openweather.breaker_failures", 5)
	v.SetDefault("openweather.breaker_cooldown", "30s")

	// Evidence thresholds
	v.SetDefault("thresholds.temperature_c", 20.0)
	v.SetDefault("thresholds.humidity_pct", 60)
	v.SetDefault("thresholds.cloud_keyword", "cloud")

	// Server defaults
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Telegram defaults
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.enabled", false)

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/whetherai.db")
	v.SetDefault("storage.max_reports", 1000)
	v.SetDefault("storage.rotate_interval", "10m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if err := c.validateOpenWeather(); err != nil {
		return err
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RequestTimeout < 1*time.Second {
		return fmt.Errorf("server.request_timeout must be at least 1 second")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	return c.ValidateLocal()
}

// ValidateLocal checks only the settings used without network access:
// thresholds, storage and logging.
func (c *Config) ValidateLocal() error {
	// Validate thresholds
	if c.Thresholds.HumidityPct < 0 || c.Thresholds.HumidityPct > 100 {
		return fmt.Errorf("thresholds.humidity_pct must be between 0 and 100")
	}
	if strings.TrimSpace(c.Thresholds.CloudKeyword) == "" {
		return fmt.Errorf("thresholds.cloud_keyword is required")
	}

	// Validate Storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxReports < 1 {
		return fmt.Errorf("storage.max_reports must be at least 1")
	}
	if c.Storage.RotateInterval < 1*time.Second {
		return fmt.Errorf("storage.rotate_interval must be at least 1 second")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

func (c *Config) validateOpenWeather() error {
	if c.OpenWeather.APIBaseURL == "" {
		return fmt.Errorf("openweather.api_base_url is required")
	}
	if c.OpenWeather.APIKey == "" {
		return fmt.Errorf("openweather.api_key is required (set WHETHERAI_OPENWEATHER_API_KEY)")
	}
	if c.OpenWeather.Units != "metric" {
		return fmt.Errorf("openweather.units must be metric; thresholds are in Celsius")
	}
	if c.OpenWeather.Timeout < 1*time.Second {
		return fmt.Errorf("openweather.timeout must be at least 1 second")
	}
	if c.OpenWeather.BreakerFailures < 1 {
		return fmt.Errorf("openweather.breaker_failures must be at least 1")
	}
	if c.OpenWeather.BreakerCooldown < 1*time.Second {
		return fmt.Errorf("openweather.breaker_cooldown must be at least 1 second")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-warming/arima"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all service settings. Values come from an optional YAML file and are then
// overridden by environment variables.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	DataPath        string        `yaml:"data_path"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	ForecastHorizon int    `yaml:"forecast_horizon"`
	ARIMAOrder      string `yaml:"arima_order"`
	PreviewRows     int    `yaml:"preview_rows"`

	// Upload store settings.
	UploadTTL      time.Duration `yaml:"upload_ttl"`
	UploadCapacity int           `yaml:"upload_capacity"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		HTTPAddr:        ":8080",
		DataPath:        "fully_cleaned_global_warming_sim_dataset.csv",
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: 10 * time.Second,
		ForecastHorizon: 50,
		ARIMAOrder:      arima.DefaultOrder.String(),
		PreviewRows:     10,
		UploadTTL:       30 * time.Minute,
		UploadCapacity:  32,
		MaxUploadBytes:  10 << 20,
	}
}

// Load reads the YAML file at path when path is non-empty, applies environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	c.HTTPAddr = envOrDefault("WARMING_HTTP_ADDR", c.HTTPAddr)
	c.DataPath = envOrDefault("WARMING_DATA_PATH", c.DataPath)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("LOG_FORMAT", c.LogFormat)
	c.ARIMAOrder = envOrDefault("WARMING_ARIMA_ORDER", c.ARIMAOrder)

	var err error
	if c.ShutdownTimeout, err = envDuration("WARMING_SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}
	if c.UploadTTL, err = envDuration("WARMING_UPLOAD_TTL", c.UploadTTL); err != nil {
		return err
	}
	if c.ForecastHorizon, err = envInt("WARMING_FORECAST_HORIZON", c.ForecastHorizon); err != nil {
		return err
	}
	if c.UploadCapacity, err = envInt("WARMING_UPLOAD_CAPACITY", c.UploadCapacity); err != nil {
		return err
	}
	if c.PreviewRows, err = envInt("WARMING_PREVIEW_ROWS", c.PreviewRows); err != nil {
		return err
	}
	maxUpload, err := envInt("WARMING_MAX_UPLOAD_BYTES", int(c.MaxUploadBytes))
	if err != nil {
		return err
	}
	c.MaxUploadBytes = int64(maxUpload)
	return nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http address is required, %w", ErrInvalidConfig)
	}
	if c.DataPath == "" {
		return fmt.Errorf("data path is required, %w", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q, %w", c.LogLevel, ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q, %w", c.LogFormat, ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, %w", ErrInvalidConfig)
	}
	if c.ForecastHorizon <= 0 {
		return fmt.Errorf("forecast horizon must be positive, %w", ErrInvalidConfig)
	}
	if _, err := c.Order(); err != nil {
		return fmt.Errorf("%w, %w", err, ErrInvalidConfig)
	}
	if c.PreviewRows <= 0 {
		return fmt.Errorf("preview rows must be positive, %w", ErrInvalidConfig)
	}
	if c.UploadTTL <= 0 {
		return fmt.Errorf("upload ttl must be positive, %w", ErrInvalidConfig)
	}
	if c.UploadCapacity <= 0 {
		return fmt.Errorf("upload capacity must be positive, %w", ErrInvalidConfig)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, %w", ErrInvalidConfig)
	}
	return nil
}

// Order parses the configured ARIMA order
func (c *Config) Order() (arima.Order, error) {
	return arima.ParseOrder(c.ARIMAOrder)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q, %w", key, s, ErrInvalidConfig)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q, %w", key, s, ErrInvalidConfig)
	}
	return n, nil
}

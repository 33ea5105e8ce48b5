package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	API       APIConfig       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Upload    UploadConfig    `yaml:"upload"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Stub      StubConfig      `yaml:"stub"`
}

// APIConfig contains backend REST API settings
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SessionConfig contains credential persistence settings
type SessionConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// UploadConfig contains reading photo upload settings
type UploadConfig struct {
	MaxFileSizeMB int64 `yaml:"max_file_size_mb"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	UpdateOverdueBills string `yaml:"update_overdue_bills"`
}

// StubConfig contains settings for the in-memory reference backend
type StubConfig struct {
	Host           string  `yaml:"host"`
	Port           int     `yaml:"port"`
	JWTSecret      string  `yaml:"jwt_secret"`
	DefaultKwhRate float64 `yaml:"default_kwh_rate"`
	AdminPhone     string  `yaml:"admin_phone"`
	AdminPassword  string  `yaml:"admin_password"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// API
	if val := os.Getenv("API_BASE_URL"); val != "" {
		c.API.BaseURL = val
	}
	if val := os.Getenv("API_TIMEOUT_SECONDS"); val != "" {
		fmt.Sscanf(val, "%d", &c.API.TimeoutSeconds)
	}

	// Session
	if val := os.Getenv("CREDENTIALS_FILE"); val != "" {
		c.Session.CredentialsFile = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Stub backend
	if val := os.Getenv("STUB_HOST"); val != "" {
		c.Stub.Host = val
	}
	if val := os.Getenv("STUB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Stub.Port)
	}
	if val := os.Getenv("STUB_JWT_SECRET"); val != "" {
		c.Stub.JWTSecret = val
	}
	if val := os.Getenv("STUB_ADMIN_PASSWORD"); val != "" {
		c.Stub.AdminPassword = val
	}
}

// Validate checks if the configuration is valid and applies defaults
func (c *Config) Validate() error {
	// API validation
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = 30
	}

	// Session defaults
	if c.Session.CredentialsFile == "" {
		c.Session.CredentialsFile = ".meterbill-credentials"
	}

	// Upload defaults: backend caps reading photos at 5 MB
	if c.Upload.MaxFileSizeMB <= 0 {
		c.Upload.MaxFileSizeMB = 5
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Scheduler defaults
	if c.Scheduler.UpdateOverdueBills == "" {
		c.Scheduler.UpdateOverdueBills = "0 0 1 * * *" // 1 AM UTC daily
	}

	// Stub defaults
	if c.Stub.Port <= 0 || c.Stub.Port > 65535 {
		c.Stub.Port = 3001
	}
	if c.Stub.JWTSecret == "" {
		return fmt.Errorf("stub jwt_secret is required")
	}
	if len(c.Stub.JWTSecret) < 32 {
		return fmt.Errorf("stub jwt_secret must be at least 32 characters")
	}
	if c.Stub.DefaultKwhRate <= 0 {
		c.Stub.DefaultKwhRate = 25.00
	}
	if c.Stub.AdminPhone == "" {
		c.Stub.AdminPhone = "+254700000000"
	}
	if c.Stub.AdminPassword == "" {
		return fmt.Errorf("stub admin_password is required")
	}

	return nil
}

// APITimeout returns the configured request timeout as a duration
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the photo upload cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxFileSizeMB * 1024 * 1024
}

// StubAddress returns the reference backend listen address
func (c *Config) StubAddress() string {
	return fmt.Sprintf("%s:%d", c.Stub.Host, c.Stub.Port)
}

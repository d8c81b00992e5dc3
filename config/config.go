// Package config loads housler-crypto deployment configuration from
// YAML files, .env files, and environment variables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/housler/housler-crypto/crypto"
)

// Config represents the main configuration structure
type Config struct {
	Environment string            `yaml:"environment"`
	Crypto      *CryptoConfig     `yaml:"crypto"`
	LegacyLK    *LegacyLKConfig   `yaml:"legacy_lk"`
	LegacyClub  *LegacyClubConfig `yaml:"legacy_club"`
	Database    *DatabaseConfig   `yaml:"database"`
	Logging     *LoggingConfig    `yaml:"logging"`
	Metrics     *MetricsConfig    `yaml:"metrics"`
}

// CryptoConfig configures the codec
type CryptoConfig struct {
	MasterKey  string `yaml:"master_key"`
	Salt       string `yaml:"salt"`
	Iterations int    `yaml:"iterations"`
}

// LegacyLKConfig configures migration from the lk format
type LegacyLKConfig struct {
	EncryptionKey  string `yaml:"encryption_key"`
	EncryptionSalt string `yaml:"encryption_salt"`
}

// LegacyClubConfig configures migration from the club format
type LegacyClubConfig struct {
	MasterKey string `yaml:"master_key"`
	Salt      string `yaml:"salt"`
}

// DatabaseConfig configures the migration runner's database connection
type DatabaseConfig struct {
	URL       string `yaml:"url"`
	Table     string `yaml:"table"`
	KeyColumn string `yaml:"key_column"`
	BatchSize int    `yaml:"batch_size"`
	Workers   int    `yaml:"workers"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setDefaults(cfg)
	substituteEnvVarsInConfig(cfg)
	applyEnvironmentOverrides(cfg)

	return cfg, nil
}

// Load builds configuration from the environment alone (a .env file
// plus HOUSLER_* variables), for deployments without a config file.
func Load() *Config {
	loadDotEnv()

	cfg := &Config{}
	setDefaults(cfg)
	applyEnvironmentOverrides(cfg)
	return cfg
}

// setDefaults sets default values for configuration
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = GetEnvironment()
	}
	if cfg.Crypto == nil {
		cfg.Crypto = &CryptoConfig{}
	}
	if cfg.Crypto.Salt == "" {
		cfg.Crypto.Salt = crypto.DefaultSalt
	}
	if cfg.Crypto.Iterations == 0 {
		cfg.Crypto.Iterations = crypto.DefaultIterations
	}
	if cfg.Database != nil {
		if cfg.Database.KeyColumn == "" {
			cfg.Database.KeyColumn = "id"
		}
		if cfg.Database.BatchSize == 0 {
			cfg.Database.BatchSize = 500
		}
		if cfg.Database.Workers == 0 {
			cfg.Database.Workers = 4
		}
	}
	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{Level: "info"}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{Enabled: false, Addr: ":9090"}
	}
}

// Validate checks the configuration for errors
func Validate(cfg *Config) error {
	if cfg.Crypto == nil || cfg.Crypto.MasterKey == "" {
		return crypto.NewConfigError("master_key is required")
	}
	if cfg.Crypto.Iterations < 1 {
		return crypto.NewConfigError("iterations must be positive")
	}
	return nil
}

// Codec constructs the codec described by the configuration.
func (c *Config) Codec() (*crypto.Codec, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	return crypto.New(c.Crypto.MasterKey,
		crypto.WithSalt(c.Crypto.Salt),
		crypto.WithIterations(c.Crypto.Iterations))
}

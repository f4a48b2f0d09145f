// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".munin/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
)

// Load reads configuration from ~/.munin/configs/config.json
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configPath)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			return loadFromDefaults(v)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Memory defaults
	v.SetDefault("memory.max_memories", 10000)
	v.SetDefault("memory.consolidation_interval_ms", 300000)
	v.SetDefault("memory.importance_threshold", 0.3)
	v.SetDefault("memory.retention_policy", "hybrid")
	v.SetDefault("memory.retention_max_age_hours", 168)

	// Cache defaults
	v.SetDefault("cache.size", 128)
	v.SetDefault("cache.ttl_seconds", 300)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.type", "sqlite")
	homeDir, _ := os.UserHomeDir()
	v.SetDefault("database.sqlite_path", filepath.Join(homeDir, ".munin/db/munin.db"))
}

// loadFromDefaults creates a config from default values
func loadFromDefaults(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Memory.MaxMemories < 1 {
		return fmt.Errorf("memory.max_memories must be at least 1, got %d", cfg.Memory.MaxMemories)
	}
	if cfg.Memory.ConsolidationInterval < 0 {
		return fmt.Errorf("memory.consolidation_interval_ms must not be negative, got %d", cfg.Memory.ConsolidationInterval)
	}
	if cfg.Memory.ImportanceThreshold < 0 || cfg.Memory.ImportanceThreshold > 1 {
		return fmt.Errorf("memory.importance_threshold must be between 0 and 1, got %v", cfg.Memory.ImportanceThreshold)
	}
	if !IsValidRetentionPolicy(cfg.Memory.RetentionPolicy) {
		return fmt.Errorf("memory.retention_policy must be one of %v, got '%s'", ValidRetentionPolicies(), cfg.Memory.RetentionPolicy)
	}
	if cfg.Memory.RetentionMaxAgeHours < 1 {
		return fmt.Errorf("memory.retention_max_age_hours must be at least 1, got %d", cfg.Memory.RetentionMaxAgeHours)
	}

	if cfg.Cache.Size < 1 {
		return fmt.Errorf("cache.size must be at least 1, got %d", cfg.Cache.Size)
	}
	if cfg.Cache.TTLSeconds < 1 {
		return fmt.Errorf("cache.ttl_seconds must be at least 1, got %d", cfg.Cache.TTLSeconds)
	}

	// Validate database type
	if cfg.Database.Type != "sqlite" && cfg.Database.Type != "postgres" {
		return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", cfg.Database.Type)
	}

	// Validate database connection info only when persistence is on
	if cfg.Database.Enabled {
		if cfg.Database.Type == "sqlite" && cfg.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required when type is 'sqlite'")
		}
		if cfg.Database.Type == "postgres" && cfg.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required when type is 'postgres'")
		}
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Memory: MemoryConfig{
			MaxMemories:           10000,
			ConsolidationInterval: 300000,
			ImportanceThreshold:   0.3,
			RetentionPolicy:       "hybrid",
			RetentionMaxAgeHours:  168,
		},
		Cache: CacheConfig{
			Size:       128,
			TTLSeconds: 300,
		},
		Database: DatabaseConfig{
			Enabled:    false,
			Type:       "sqlite",
			SQLitePath: filepath.Join(homeDir, ".munin/db/munin.db"),
		},
	}
}

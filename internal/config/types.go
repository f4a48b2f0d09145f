// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Config represents the complete application configuration
type Config struct {
	Memory   MemoryConfig   `mapstructure:"memory"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
}

// MemoryConfig holds store and consolidation settings
type MemoryConfig struct {
	MaxMemories           int     `mapstructure:"max_memories"`
	ConsolidationInterval int     `mapstructure:"consolidation_interval_ms"` // 0 disables the scheduler
	ImportanceThreshold   float64 `mapstructure:"importance_threshold"`
	RetentionPolicy       string  `mapstructure:"retention_policy"` // time_based, count_based, importance_based, hybrid
	RetentionMaxAgeHours  int     `mapstructure:"retention_max_age_hours"`
}

// CacheConfig holds the per-partition recency cache settings
type CacheConfig struct {
	Size       int `mapstructure:"size"`
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// DatabaseConfig holds snapshot persistence settings
type DatabaseConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// ValidRetentionPolicies returns all valid retention_policy values
func ValidRetentionPolicies() []string {
	return []string{
		"time_based",
		"count_based",
		"importance_based",
		"hybrid",
	}
}

// isValidType is a generic helper to check if a type is in a list of valid types
func isValidType(aType string, validTypes []string) bool {
	for _, valid := range validTypes {
		if aType == valid {
			return true
		}
	}
	return false
}

// IsValidRetentionPolicy checks if a retention policy name is valid
func IsValidRetentionPolicy(policy string) bool {
	return isValidType(policy, ValidRetentionPolicies())
}

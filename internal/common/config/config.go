// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
}

// APIConfig points at the bursary REST backend.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds, request wrapper only
	CreateEndpoint string `mapstructure:"create_endpoint"`
}

// StorageConfig selects the draft store backend.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // "redis" or "memory"
	Namespace string `mapstructure:"namespace"`
	DraftTTL  int    `mapstructure:"draft_ttl"` // seconds, 0 keeps drafts forever
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DocumentsConfig bounds uploaded files.
type DocumentsConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DraftTTLDuration returns the draft expiry as a time.Duration.
func (s StorageConfig) DraftTTLDuration() time.Duration {
	return time.Duration(s.DraftTTL) * time.Second
}

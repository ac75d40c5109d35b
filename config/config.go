// Package config loads and saves the server's TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Config represents the application configuration.
type Config struct {
	Listener ListenerConfig `toml:"listener" json:"listener"`
	Status   StatusConfig   `toml:"status" json:"status"`
	Engine   EngineConfig   `toml:"engine" json:"engine"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
}

// ListenerConfig holds the duplex-channel listener settings.
type ListenerConfig struct {
	Address string `toml:"address" json:"address"`
}

// StatusConfig holds the optional JSON introspection endpoint settings.
// Address empty disables the endpoint entirely.
type StatusConfig struct {
	Address string `toml:"address" json:"address"`
}

// EngineConfig holds the capture engine's tunables.
type EngineConfig struct {
	MaxMemoryMB             int `toml:"max_memory_mb" json:"max_memory_mb"`
	CoalesceMaxWaitMs       int `toml:"coalesce_max_wait_ms" json:"coalesce_max_wait_ms"`
	PerformanceCheckSeconds int `toml:"performance_check_seconds" json:"performance_check_seconds"`
	MinJPEGQuality          int `toml:"min_jpeg_quality" json:"min_jpeg_quality"`
	MaxJPEGQuality          int `toml:"max_jpeg_quality" json:"max_jpeg_quality"`
	MinWidth                int `toml:"min_width" json:"min_width"`
	MaxWidth                int `toml:"max_width" json:"max_width"`
}

// LoggingConfig holds logging level and log-file retention settings.
type LoggingConfig struct {
	Level       string `toml:"level" json:"level"`
	MaxLogFiles int    `toml:"max_log_files" json:"max_log_files"`
}

// LoadConfig loads configuration from a TOML file, overlaying hardcoded
// defaults with whatever the file sets.
func LoadConfig(configPath string) (*Config, error) {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := &Config{
		Listener: ListenerConfig{Address: "0.0.0.0:3000"},
		Status:   StatusConfig{Address: ""},
		Engine: EngineConfig{
			MaxMemoryMB:             512,
			CoalesceMaxWaitMs:       100,
			PerformanceCheckSeconds: 2,
			MinJPEGQuality:          60,
			MaxJPEGQuality:          90,
			MinWidth:                800,
			MaxWidth:                1920,
		},
		Logging: LoggingConfig{
			Level:       "info",
			MaxLogFiles: 20,
		},
	}

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		logger.Info("Config loaded from file", zap.String("path", configPath))
	} else {
		logger.Info("Config file not found, using defaults", zap.String("path", configPath))
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to a file.
func SaveConfig(cfg *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

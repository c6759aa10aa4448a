package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default and file values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("SPOTBEAM_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Daemon configuration
	if pidFile := os.Getenv("SPOTBEAM_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// IPC configuration
	if socketPath := os.Getenv("SPOTBEAM_SOCKET"); socketPath != "" {
		cfg.IPC.SocketPath = socketPath
	}

	if timeout := os.Getenv("SPOTBEAM_IPC_TIMEOUT"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.IPC.Timeout = time.Duration(seconds) * time.Second
		}
	}

	// Capture configuration
	if tempDir := os.Getenv("SPOTBEAM_CAPTURE_DIR"); tempDir != "" {
		cfg.Capture.TempDir = tempDir
	}

	// Logging configuration
	if logLevel := os.Getenv("SPOTBEAM_LOG_LEVEL"); logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if logFile := os.Getenv("SPOTBEAM_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}

// Load creates a Config from defaults, an optional YAML config file, and
// environment overrides, in that order of precedence.
func Load(configFile string) (*Config, error) {
	cfg := Default()
	if configFile != "" {
		if err := LoadFile(cfg, configFile); err != nil {
			return nil, err
		}
	}
	LoadFromEnv(cfg)
	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Daemon process configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// IPC command channel configuration
	IPC IPCConfig `yaml:"ipc"`

	// Capture configuration
	Capture CaptureConfig `yaml:"capture"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// DatabaseConfig holds settings-store database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database file
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"` // Path to PID file guarding the single instance
}

// IPCConfig holds the local command-channel configuration
type IPCConfig struct {
	SocketPath string        `yaml:"socket_path"` // Unix socket the running instance listens on
	Timeout    time.Duration `yaml:"timeout"`     // Client request timeout

	// Server-side HTTP timeouts on the socket
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// CaptureConfig holds screen-capture configuration
type CaptureConfig struct {
	TempDir string `yaml:"temp_dir"` // Directory for compositor screenshot files
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	uid := os.Getuid()
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/spotbeam/spotbeam.db
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/spotbeam-%d.pid", uid),
		},
		IPC: IPCConfig{
			SocketPath:   defaultSocketPath(uid),
			Timeout:      5 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Capture: CaptureConfig{
			TempDir: os.TempDir(),
		},
		Log: LogConfig{
			Level: "info",
			File:  fmt.Sprintf("/tmp/spotbeam-%d.log", uid),
		},
	}
}

func defaultSocketPath(uid int) string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return fmt.Sprintf("%s/spotbeam.sock", runtimeDir)
	}
	return fmt.Sprintf("/tmp/spotbeam-%d.sock", uid)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.IPC.SocketPath == "" {
		return fmt.Errorf("IPC socket path cannot be empty")
	}

	if c.IPC.Timeout <= 0 {
		return fmt.Errorf("IPC timeout must be positive, got %v", c.IPC.Timeout)
	}

	if c.IPC.ReadTimeout <= 0 || c.IPC.WriteTimeout <= 0 || c.IPC.IdleTimeout <= 0 {
		return fmt.Errorf("IPC server timeouts must be positive, got read=%v write=%v idle=%v",
			c.IPC.ReadTimeout, c.IPC.WriteTimeout, c.IPC.IdleTimeout)
	}

	if c.Capture.TempDir == "" {
		return fmt.Errorf("capture temp directory cannot be empty")
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Daemon:
    PID File: %s
  IPC:
    Socket: %s
    Timeout: %v
  Capture:
    Temp Dir: %s
  Log:
    Level: %s
    File: %s`,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.IPC.SocketPath,
		c.IPC.Timeout,
		c.Capture.TempDir,
		c.Log.Level,
		c.Log.File,
	)
}

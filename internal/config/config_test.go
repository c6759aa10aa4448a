package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Daemon.PIDFile == "" {
		t.Error("Default() PID file is empty")
	}
	if cfg.IPC.SocketPath == "" {
		t.Error("Default() socket path is empty")
	}
	if cfg.IPC.Timeout <= 0 {
		t.Errorf("Default() IPC timeout = %v, want positive", cfg.IPC.Timeout)
	}
	if cfg.IPC.ReadTimeout <= 0 || cfg.IPC.WriteTimeout <= 0 || cfg.IPC.IdleTimeout <= 0 {
		t.Errorf("Default() IPC server timeouts = %v/%v/%v, want positive",
			cfg.IPC.ReadTimeout, cfg.IPC.WriteTimeout, cfg.IPC.IdleTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Default() log level = %s, want info", cfg.Log.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() config failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty PID file",
			mutate:  func(c *Config) { c.Daemon.PIDFile = "" },
			wantErr: true,
		},
		{
			name:    "empty socket path",
			mutate:  func(c *Config) { c.IPC.SocketPath = "" },
			wantErr: true,
		},
		{
			name:    "zero IPC timeout",
			mutate:  func(c *Config) { c.IPC.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero IPC server read timeout",
			mutate:  func(c *Config) { c.IPC.ReadTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative IPC server idle timeout",
			mutate:  func(c *Config) { c.IPC.IdleTimeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "empty capture temp dir",
			mutate:  func(c *Config) { c.Capture.TempDir = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	envVars := map[string]string{
		"SPOTBEAM_DB_PATH":     "/tmp/test-spotbeam.db",
		"SPOTBEAM_PID_FILE":    "/tmp/test-spotbeam.pid",
		"SPOTBEAM_SOCKET":      "/tmp/test-spotbeam.sock",
		"SPOTBEAM_IPC_TIMEOUT": "9",
		"SPOTBEAM_CAPTURE_DIR": "/tmp/captures",
		"SPOTBEAM_LOG_LEVEL":   "debug",
		"SPOTBEAM_LOG_FILE":    "/tmp/test-spotbeam.log",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg := New()

	if cfg.Database.Path != "/tmp/test-spotbeam.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.Daemon.PIDFile != "/tmp/test-spotbeam.pid" {
		t.Errorf("Daemon.PIDFile = %s", cfg.Daemon.PIDFile)
	}
	if cfg.IPC.SocketPath != "/tmp/test-spotbeam.sock" {
		t.Errorf("IPC.SocketPath = %s", cfg.IPC.SocketPath)
	}
	if cfg.IPC.Timeout != 9*time.Second {
		t.Errorf("IPC.Timeout = %v, want 9s", cfg.IPC.Timeout)
	}
	if cfg.Capture.TempDir != "/tmp/captures" {
		t.Errorf("Capture.TempDir = %s", cfg.Capture.TempDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s", cfg.Log.Level)
	}
}

func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("SPOTBEAM_IPC_TIMEOUT", "not-a-number")

	cfg := New()
	if cfg.IPC.Timeout != Default().IPC.Timeout {
		t.Errorf("invalid timeout should keep default, got %v", cfg.IPC.Timeout)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spotbeam.yaml")

	content := `database:
  path: /var/lib/spotbeam/settings.db
daemon:
  pid_file: /run/spotbeam.pid
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Database.Path != "/var/lib/spotbeam/settings.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.Daemon.PIDFile != "/run/spotbeam.pid" {
		t.Errorf("Daemon.PIDFile = %s", cfg.Daemon.PIDFile)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s", cfg.Log.Level)
	}

	// Keys absent from the file keep their defaults.
	if cfg.IPC.Timeout != Default().IPC.Timeout {
		t.Errorf("IPC.Timeout = %v, want default", cfg.IPC.Timeout)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := LoadFile(cfg, "/nonexistent/spotbeam.yaml"); err == nil {
		t.Error("LoadFile() with missing file should error")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spotbeam.yaml")

	content := "log:\n  level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Environment overrides the file.
	t.Setenv("SPOTBEAM_LOG_LEVEL", "trace")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "trace" {
		t.Errorf("Log.Level = %s, want trace (env over file)", cfg.Log.Level)
	}
}

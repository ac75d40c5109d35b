package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Listener.Address != "0.0.0.0:3000" {
		t.Errorf("Listener.Address = %q, want %q", cfg.Listener.Address, "0.0.0.0:3000")
	}
	if cfg.Engine.MaxMemoryMB != 512 {
		t.Errorf("Engine.MaxMemoryMB = %d, want 512", cfg.Engine.MaxMemoryMB)
	}
	if cfg.Engine.MinJPEGQuality != 60 || cfg.Engine.MaxJPEGQuality != 90 {
		t.Errorf("JPEG quality bounds = [%d,%d], want [60,90]", cfg.Engine.MinJPEGQuality, cfg.Engine.MaxJPEGQuality)
	}
	if cfg.Status.Address != "" {
		t.Errorf("Status.Address = %q, want empty (disabled by default)", cfg.Status.Address)
	}
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := []byte(`
[listener]
address = "127.0.0.1:9000"

[engine]
max_memory_mb = 256
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Listener.Address != "127.0.0.1:9000" {
		t.Errorf("Listener.Address = %q, want %q", cfg.Listener.Address, "127.0.0.1:9000")
	}
	if cfg.Engine.MaxMemoryMB != 256 {
		t.Errorf("Engine.MaxMemoryMB = %d, want 256 (overridden)", cfg.Engine.MaxMemoryMB)
	}
	// Fields left out of the file retain their defaults.
	if cfg.Engine.MinJPEGQuality != 60 {
		t.Errorf("Engine.MinJPEGQuality = %d, want 60 (default)", cfg.Engine.MinJPEGQuality)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.toml")
	original := &Config{
		Listener: ListenerConfig{Address: "0.0.0.0:4000"},
		Engine:   EngineConfig{MaxMemoryMB: 1024, MinJPEGQuality: 50, MaxJPEGQuality: 95, MinWidth: 640, MaxWidth: 2560},
		Logging:  LoggingConfig{Level: "debug", MaxLogFiles: 5},
	}

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if loaded.Listener.Address != original.Listener.Address {
		t.Errorf("Listener.Address = %q, want %q", loaded.Listener.Address, original.Listener.Address)
	}
	if loaded.Engine.MaxMemoryMB != original.Engine.MaxMemoryMB {
		t.Errorf("Engine.MaxMemoryMB = %d, want %d", loaded.Engine.MaxMemoryMB, original.Engine.MaxMemoryMB)
	}
	if loaded.Logging.Level != original.Logging.Level {
		t.Errorf("Logging.Level = %q, want %q", loaded.Logging.Level, original.Logging.Level)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Root != filepath.Join(home, ".pinvault", "Vault") {
		t.Errorf("Unexpected root %s", cfg.Root)
	}
	if cfg.ExportDir != filepath.Join(home, "Pictures", "Vault") {
		t.Errorf("Unexpected export dir %s", cfg.ExportDir)
	}
	if cfg.PageSize != 50 || cfg.LogLevel != "warn" || cfg.PIN != "" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "pinvault.yaml")
	content := "root: /srv/vault\npage_size: 100\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("PINVAULT_LOG_LEVEL", "error")
	t.Setenv("PINVAULT_PIN", "123456")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"root from file", cfg.Root, "/srv/vault"},
		{"page size from file", cfg.PageSize, 100},
		{"env beats file", cfg.LogLevel, "error"},
		{"env only", cfg.PIN, "123456"},
		{"default kept", cfg.LogFormat, "console"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestLoadSearchesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "pinvault")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pinvault.yaml"), []byte("page_size: 100\n"), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PageSize != 100 {
		t.Errorf("Expected page size from home config, got %d", cfg.PageSize)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for an explicit missing file")
	}

	t.Setenv("PINVAULT_PAGE_SIZE", "0")
	if _, err := Load(""); err == nil {
		t.Error("Expected error for page_size 0")
	}
}

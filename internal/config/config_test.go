package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes the working directory for the duration of the test.
// Equivalent to t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Error(err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Runner.PollInterval != 100*time.Millisecond {
		t.Errorf("poll interval = %v, want 100ms", cfg.Runner.PollInterval)
	}
	if cfg.Runner.MaxImageDim != 800 {
		t.Errorf("max image dim = %d, want 800", cfg.Runner.MaxImageDim)
	}
	if cfg.Runner.PrepopulatePath != "prepopulate.sql" {
		t.Errorf("prepopulate path = %q", cfg.Runner.PrepopulatePath)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	err := os.WriteFile(filepath.Join(dir, "runroom.yaml"), []byte(`
server:
  port: 9090
runner:
  poll_interval: 250ms
  languages_file: languages.yaml
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Runner.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval = %v, want 250ms", cfg.Runner.PollInterval)
	}
	if cfg.Runner.LanguagesFile != "languages.yaml" {
		t.Errorf("languages file = %q", cfg.Runner.LanguagesFile)
	}
	// Unset keys keep their defaults.
	if cfg.Runner.MaxImageDim != 800 {
		t.Errorf("max image dim = %d, want 800", cfg.Runner.MaxImageDim)
	}
}

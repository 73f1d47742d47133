package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadReadsFileAndAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: docforge-test
database:
  dsn: /tmp/pipeline-test.sqlite
dispatch:
  mode: queued
queue:
  subject: test.jobs
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "docforge-test" {
		t.Errorf("App.Name = %q, want docforge-test", cfg.App.Name)
	}
	if cfg.Database.DSN != "/tmp/pipeline-test.sqlite" {
		t.Errorf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.Dispatch.Mode != "queued" {
		t.Errorf("Dispatch.Mode = %q, want queued", cfg.Dispatch.Mode)
	}
	if cfg.Queue.Subject != "test.jobs" {
		t.Errorf("Queue.Subject = %q, want test.jobs", cfg.Queue.Subject)
	}

	// Everything the file omits stays at its default.
	if cfg.App.Env != "local" {
		t.Errorf("App.Env = %q, want local", cfg.App.Env)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Queue.URL != "nats://127.0.0.1:4222" {
		t.Errorf("Queue.URL = %q", cfg.Queue.URL)
	}
	if cfg.Generator.Model != "gpt-4o-mini" {
		t.Errorf("Generator.Model = %q", cfg.Generator.Model)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
}

func TestLoadRejectsInvalidDispatchMode(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: /tmp/pipeline-test.sqlite
dispatch:
  mode: eventually
`)

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatalf("Load() expected error for invalid dispatch mode")
	}
}

func TestLoadRejectsEmptyDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: ""
`)

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatalf("Load() expected error for empty database.dsn")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatalf("Load() expected error for missing explicit config file")
	}
}

func TestWatchRequiresCallback(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: /tmp/pipeline-test.sqlite
`)

	if err := Watch(context.Background(), path, nil); err == nil {
		t.Fatalf("Watch() expected error for nil callback")
	}
}

func TestValidateDispatchModeNormalizes(t *testing.T) {
	for _, mode := range []string{"immediate", " Queued ", "MANUAL"} {
		if err := validateDispatchMode(mode); err != nil {
			t.Errorf("validateDispatchMode(%q) = %v", mode, err)
		}
	}
	if err := validateDispatchMode(""); err == nil {
		t.Errorf("validateDispatchMode(\"\") expected error")
	}
}

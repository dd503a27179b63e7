package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Session.IdleTimeout != 5*time.Minute {
		t.Fatalf("idle timeout = %v; want 5m", cfg.Session.IdleTimeout)
	}
	if cfg.Store.Driver != "memory" || cfg.Store.Namespace != "plagiarism_results" {
		t.Fatalf("store = %+v", cfg.Store)
	}
	if cfg.Analysis.UploadEndpoint != "/check-plagiarism" || cfg.Analysis.ProgressEndpoint != "/progress" {
		t.Fatalf("analysis = %+v", cfg.Analysis)
	}
	if cfg.RabbitMQ.Enabled || cfg.RabbitMQ.CompletedKey != "session.completed" {
		t.Fatalf("rabbitmq = %+v", cfg.RabbitMQ)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "store:\n  driver: redis\n  namespace: runs\nsession:\n  idle_timeout: 0s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANALYSIS_URL", "http://checker:5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != "redis" || cfg.Store.Namespace != "runs" {
		t.Fatalf("store = %+v", cfg.Store)
	}
	if cfg.Session.IdleTimeout != 0 {
		t.Fatalf("idle timeout = %v; want disabled", cfg.Session.IdleTimeout)
	}
	if cfg.Analysis.URL != "http://checker:5000" {
		t.Fatalf("analysis url = %q", cfg.Analysis.URL)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Analysis: AnalysisConfig{URL: "http://x"},
		Store:    StoreConfig{Driver: "memory", Namespace: "ns"},
	}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, true},
		{"empty namespace", func(c *Config) { c.Store.Namespace = "" }, true},
		{"negative idle", func(c *Config) { c.Session.IdleTimeout = -time.Second }, true},
		{"no analysis url", func(c *Config) { c.Analysis.URL = "" }, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := base
			c.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != c.wantErr {
				t.Fatalf("Validate() error = %v; wantErr %t", err, c.wantErr)
			}
		})
	}
}

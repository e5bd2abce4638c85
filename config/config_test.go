package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Port)
	}
	if cfg.Scheduler.Strategy != "classifier" {
		t.Errorf("expected classifier strategy, got %s", cfg.Scheduler.Strategy)
	}
	if cfg.Store.Kind != "memory" {
		t.Errorf("expected memory store, got %s", cfg.Store.Kind)
	}

	w := cfg.Scheduler.Weights
	sum := w.Headroom + w.Latency + w.Cost + w.Affinity
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("default weights must sum to 1.0, got %v", sum)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		// viper treats an explicit missing file as an error
		t.Fatalf("expected error for explicit missing file, got config %+v", cfg)
	}

	// with no explicit path and no file present, defaults apply
	wd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(wd)

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.AppName != "codered" {
		t.Errorf("expected default app name, got %s", cfg.AppName)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codered.yaml")

	yaml := `
port: 9100
scheduler:
  strategy: heuristic
  weights:
    headroom: 0.4
    latency: 0.3
    cost: 0.2
    affinity: 0.1
store:
  kind: bolt
  file: /tmp/routing.db
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 9100 {
		t.Errorf("port: got %d, want 9100", cfg.Port)
	}
	if cfg.Scheduler.Strategy != "heuristic" {
		t.Errorf("strategy: got %s", cfg.Scheduler.Strategy)
	}
	if cfg.Scheduler.Weights.Headroom != 0.4 {
		t.Errorf("headroom weight: got %v", cfg.Scheduler.Weights.Headroom)
	}
	if cfg.Store.Kind != "bolt" || cfg.Store.File != "/tmp/routing.db" {
		t.Errorf("store: got %+v", cfg.Store)
	}
	// untouched fields keep their defaults
	if cfg.Model.Path != "ml/model.json" {
		t.Errorf("model path default lost: %s", cfg.Model.Path)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CODERED_SCHEDULER_STRATEGY", "heuristic")
	t.Setenv("CODERED_PORT", "9200")

	wd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Scheduler.Strategy != "heuristic" {
		t.Errorf("env override ignored: %s", cfg.Scheduler.Strategy)
	}
	if cfg.Port != 9200 {
		t.Errorf("env override ignored: %d", cfg.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Scheduler.Strategy = "roulette" }},
		{"unknown store", func(c *Config) { c.Store.Kind = "postgres" }},
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

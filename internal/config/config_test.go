package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Port != 8080 || cfg.TickMs != 1000 || cfg.ReplanIntervalS != 3600 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.EventProbability != 0.2 || cfg.LookbackMin != 55 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Tick() != time.Second || cfg.ReplanInterval() != time.Hour || cfg.Lookback() != 55*time.Minute {
		t.Fatal("duration helpers disagree with raw values")
	}
	f := cfg.Factory()
	if f.Lat != 31.2304 || f.Lng != 121.4737 {
		t.Fatalf("factory location: %+v", f)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TICK_MS", "250")
	t.Setenv("REPLAN_INTERVAL_S", "600")
	t.Setenv("EVENT_PROB", "0.5")
	t.Setenv("SOLVER", "greedy")
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetopt")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TickMs != 250 || cfg.ReplanIntervalS != 600 || cfg.EventProbability != 0.5 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Solver != "greedy" || cfg.DatabaseURL != "postgres://localhost/fleetopt" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestYAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "port: 9090\ntickMs: 500\nsolver: greedy\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TICK_MS", "750") // env wins over the file
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 || cfg.Solver != "greedy" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.TickMs != 750 {
		t.Fatalf("env should override yaml, got tickMs=%d", cfg.TickMs)
	}
}

func TestValidation(t *testing.T) {
	t.Setenv("TICK_MS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("want error for zero tick")
	}
	t.Setenv("TICK_MS", "1000")
	t.Setenv("EVENT_PROB", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("want error for probability out of range")
	}
	t.Setenv("EVENT_PROB", "0.2")
	t.Setenv("SOLVER", "annealing")
	if _, err := Load(); err == nil {
		t.Fatal("want error for unknown solver")
	}
}

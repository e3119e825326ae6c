package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v3"

	"fleetopt/internal/model"
)

// Config holds coordinator settings. Values come from defaults, then an
// optional YAML file (CONFIG_PATH), then env overrides, in that order.
type Config struct {
	Port             int     `yaml:"port"`
	TickMs           int     `yaml:"tickMs"`
	ReplanIntervalS  int     `yaml:"replanIntervalSec"`
	LookbackMin      int     `yaml:"productionLookbackMin"`
	EventProbability float64 `yaml:"eventProbability"`
	FactoryLat       float64 `yaml:"factoryLat"`
	FactoryLng       float64 `yaml:"factoryLng"`
	Solver           string  `yaml:"solver"` // partition, greedy
	RateRPS          float64 `yaml:"rateRps"`
	RateBurst        int     `yaml:"rateBurst"`

	// Env-only wiring
	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`
}

func Default() Config {
	return Config{
		Port:             8080,
		TickMs:           1000,
		ReplanIntervalS:  3600,
		LookbackMin:      55,
		EventProbability: 0.2,
		// Shanghai factory
		FactoryLat: 31.2304,
		FactoryLng: 121.4737,
		Solver:     "partition",
		RateRPS:    50,
		RateBurst:  100,
	}
}

// Load builds the effective config.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil { cfg.Port = n }
	}
	if v := os.Getenv("TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil { cfg.TickMs = n }
	}
	if v := os.Getenv("REPLAN_INTERVAL_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil { cfg.ReplanIntervalS = n }
	}
	if v := os.Getenv("EVENT_PROB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil { cfg.EventProbability = f }
	}
	if v := os.Getenv("SOLVER"); v != "" { cfg.Solver = v }
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil { cfg.RateRPS = f }
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil { cfg.RateBurst = n }
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")
}

func (c Config) validate() error {
	if c.TickMs <= 0 {
		return fmt.Errorf("tickMs must be positive, got %d", c.TickMs)
	}
	if c.ReplanIntervalS <= 0 {
		return fmt.Errorf("replanIntervalSec must be positive, got %d", c.ReplanIntervalS)
	}
	if c.EventProbability < 0 || c.EventProbability > 1 {
		return fmt.Errorf("eventProbability must be in [0,1], got %v", c.EventProbability)
	}
	switch c.Solver {
	case "partition", "greedy":
	default:
		return fmt.Errorf("unknown solver %q", c.Solver)
	}
	return nil
}

func (c Config) Tick() time.Duration           { return time.Duration(c.TickMs) * time.Millisecond }
func (c Config) ReplanInterval() time.Duration { return time.Duration(c.ReplanIntervalS) * time.Second }
func (c Config) Lookback() time.Duration       { return time.Duration(c.LookbackMin) * time.Minute }

func (c Config) Factory() model.GeoPoint {
	return model.GeoPoint{Lat: c.FactoryLat, Lng: c.FactoryLng}
}

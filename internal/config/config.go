// Package config loads the quantsweep YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quantsweep/internal/sweep"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for a quantsweep run.
type Config struct {
	Storage Storage     `yaml:"storage"`
	Sweep   SweepConfig `yaml:"sweep"`
	Grid    GridConfig  `yaml:"grid"`
	Alpaca  Alpaca      `yaml:"alpaca"`
	Fetch   FetchConfig `yaml:"fetch"`
	Logging Logging     `yaml:"logging"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// SweepConfig holds the shared simulation settings.
type SweepConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	RiskFreeRate   float64 `yaml:"risk_free_rate"`
	PeriodsPerYear float64 `yaml:"periods_per_year"`
	Workers        int     `yaml:"workers"`
	TopN           int     `yaml:"top_n"`
}

// GridConfig is the parameter grid: candidate values per strategy type plus
// the orthogonal shorting axis.
type GridConfig struct {
	Momentum      MomentumGrid      `yaml:"momentum"`
	MeanReversion MeanReversionGrid `yaml:"mean_reversion"`
	SMACrossover  SMACrossoverGrid  `yaml:"sma_crossover"`
	AllowShorting []bool            `yaml:"allow_shorting"`
}

// MomentumGrid lists candidate momentum windows.
type MomentumGrid struct {
	Windows []int `yaml:"windows"`
}

// MeanReversionGrid lists candidate mean-reversion parameters.
type MeanReversionGrid struct {
	Windows []int     `yaml:"windows"`
	EntryZ  []float64 `yaml:"entry_z"`
	ExitZ   []float64 `yaml:"exit_z"`
}

// SMACrossoverGrid lists candidate moving-average window pairs.
type SMACrossoverGrid struct {
	ShortWindows []int `yaml:"short_windows"`
	LongWindows  []int `yaml:"long_windows"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// FetchConfig controls the daily-close fetcher.
type FetchConfig struct {
	Symbols         []string `yaml:"symbols"`
	StartDate       string   `yaml:"start_date"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, applies
// defaults and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if cfg.Sweep.InitialCapital <= 0 {
		return nil, fmt.Errorf("config: initial_capital %v must be positive", cfg.Sweep.InitialCapital)
	}
	if cfg.Sweep.PeriodsPerYear <= 0 {
		return nil, fmt.Errorf("config: periods_per_year %v must be positive", cfg.Sweep.PeriodsPerYear)
	}
	return cfg, nil
}

// applyDefaults fills zero values with the standard daily-data defaults.
func applyDefaults(cfg *Config) {
	if cfg.Sweep.InitialCapital == 0 {
		cfg.Sweep.InitialCapital = 100000
	}
	if cfg.Sweep.PeriodsPerYear == 0 {
		cfg.Sweep.PeriodsPerYear = 252
	}
	if cfg.Sweep.TopN == 0 {
		cfg.Sweep.TopN = 5
	}
	if cfg.Fetch.RateLimitPerMin == 0 {
		cfg.Fetch.RateLimitPerMin = 200
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUANTSWEEP_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("QUANTSWEEP_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}
	if v := os.Getenv("QUANTSWEEP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority, canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// SweepGrid converts the configured grid into the sweep package's form.
func (g GridConfig) SweepGrid() sweep.Grid {
	return sweep.Grid{
		Momentum: sweep.MomentumGrid{Windows: g.Momentum.Windows},
		MeanReversion: sweep.MeanReversionGrid{
			Windows: g.MeanReversion.Windows,
			EntryZ:  g.MeanReversion.EntryZ,
			ExitZ:   g.MeanReversion.ExitZ,
		},
		SMACrossover: sweep.SMACrossoverGrid{
			ShortWindows: g.SMACrossover.ShortWindows,
			LongWindows:  g.SMACrossover.LongWindows,
		},
		AllowShorting: g.AllowShorting,
	}
}

// Settings converts the sweep section into the sweep package's form.
func (s SweepConfig) Settings() sweep.Settings {
	return sweep.Settings{
		InitialCapital: s.InitialCapital,
		RiskFreeRate:   s.RiskFreeRate,
		PeriodsPerYear: s.PeriodsPerYear,
		Workers:        s.Workers,
	}
}

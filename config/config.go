package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v2"

	"github.com/solanum-labs/arbscan/types"
)

// ErrMissingEndpoint is returned when a command needs live market data
// but no fetcher endpoint is configured.
var ErrMissingEndpoint = fmt.Errorf("no fetcher endpoint configured")

type Config struct {
	Scanner  ScanConfig    `yaml:"scanner"`
	Fetchers FetcherConfig `yaml:"fetchers"`
	Gas      GasConfig     `yaml:"gas"`
	Watch    WatchConfig   `yaml:"watch"`
	Redis    RedisConfig   `yaml:"redis"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// ScanConfig holds the detection thresholds and search sizing knobs.
// Amounts are lamports of the start token's smallest unit.
type ScanConfig struct {
	MinProfitLamports int64   `yaml:"min_profit_lamports"`
	MinProfitPercent  float64 `yaml:"min_profit_percent"`
	MaxHops           int     `yaml:"max_hops"`
	ShowUnprofitable  bool    `yaml:"show_unprofitable"`
	ReferenceLamports int64   `yaml:"reference_lamports"`
	SeedTokens        int     `yaml:"seed_tokens"`
	BellmanFordSeeds  int     `yaml:"bellman_ford_seeds"`
	BatchSize         int     `yaml:"batch_size"`
	Workers           int     `yaml:"workers"`
}

type FetcherConfig struct {
	Timeout        Duration `yaml:"timeout"`
	RaydiumURL     string   `yaml:"raydium_url"`
	OrcaURL        string   `yaml:"orca_url"`
	MeteoraEnabled bool     `yaml:"meteora_enabled"`
	RequestsPerSec float64  `yaml:"requests_per_sec"`
	Burst          int      `yaml:"burst"`
	MinTVL         float64  `yaml:"min_tvl"`
}

// GasConfig overrides the lamport fee model used to net out profits.
// Zero values keep the estimator defaults.
type GasConfig struct {
	BaseFeeLamports    int64   `yaml:"base_fee_lamports"`
	PerSwapFeeLamports int64   `yaml:"per_swap_fee_lamports"`
	PriorityMultiplier float64 `yaml:"priority_multiplier"`
}

type WatchConfig struct {
	Schedule    string   `yaml:"schedule"`
	TopN        int      `yaml:"top_n"`
	SuppressFor Duration `yaml:"suppress_for"`
}

// RedisConfig enables opportunity caching and publishing when Addr is
// set. An empty Addr disables redis entirely.
type RedisConfig struct {
	Addr        string   `yaml:"addr"`
	Password    string   `yaml:"password"`
	DB          int      `yaml:"db"`
	TTL         Duration `yaml:"ttl"`
	Channel     string   `yaml:"channel"`
	RecentLimit int64    `yaml:"recent_limit"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Duration wraps time.Duration so config files can use forms like
// "30s" or "5m" instead of nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (c *Config) ValidateConfig() error {
	var errors []string

	if err := c.Scanner.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("scanner config error: %v", err))
	}
	if err := c.Fetchers.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("fetchers config error: %v", err))
	}
	if err := c.Gas.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("gas config error: %v", err))
	}
	if err := c.Watch.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("watch config error: %v", err))
	}
	if err := c.Redis.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("redis config error: %v", err))
	}
	if err := c.Metrics.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("metrics config error: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *ScanConfig) Validate() error {
	if s.MaxHops <= 0 {
		return fmt.Errorf("max_hops must be positive")
	}
	if s.MinProfitLamports < 0 {
		return fmt.Errorf("min_profit_lamports must not be negative")
	}
	if s.MinProfitPercent < 0 {
		return fmt.Errorf("min_profit_percent must not be negative")
	}
	if s.ReferenceLamports < 0 {
		return fmt.Errorf("reference_lamports must not be negative")
	}
	if s.SeedTokens < 0 || s.BellmanFordSeeds < 0 {
		return fmt.Errorf("seed counts must not be negative")
	}
	if s.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	return nil
}

func (f *FetcherConfig) Validate() error {
	if time.Duration(f.Timeout) <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if f.RequestsPerSec <= 0 {
		return fmt.Errorf("requests_per_sec must be positive")
	}
	if f.Burst <= 0 {
		return fmt.Errorf("burst must be positive")
	}
	if f.MinTVL < 0 {
		return fmt.Errorf("min_tvl must not be negative")
	}

	return nil
}

func (g *GasConfig) Validate() error {
	if g.BaseFeeLamports < 0 || g.PerSwapFeeLamports < 0 {
		return fmt.Errorf("fee lamports must not be negative")
	}
	if g.PriorityMultiplier != 0 && g.PriorityMultiplier < 1 {
		return fmt.Errorf("priority_multiplier must be at least 1")
	}

	return nil
}

func (w *WatchConfig) Validate() error {
	if w.Schedule == "" {
		return fmt.Errorf("schedule must be specified")
	}
	if _, err := cron.ParseStandard(w.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %v", w.Schedule, err)
	}
	if w.TopN <= 0 {
		return fmt.Errorf("top_n must be positive")
	}
	if time.Duration(w.SuppressFor) < 0 {
		return fmt.Errorf("suppress_for must not be negative")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return nil
	}

	if r.DB < 0 {
		return fmt.Errorf("db must not be negative")
	}
	if time.Duration(r.TTL) <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	if r.RecentLimit < 0 {
		return fmt.Errorf("recent_limit must not be negative")
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Listen == "" {
		return fmt.Errorf("listen address must be specified when metrics are enabled")
	}

	return nil
}

// ScannerConfig converts the scanner section into the runtime form the
// detection pipeline consumes.
func (c *Config) ScannerConfig() types.ScannerConfig {
	sc := types.ScannerConfig{
		MinProfitPercent: c.Scanner.MinProfitPercent,
		MaxHops:          c.Scanner.MaxHops,
		ShowUnprofitable: c.Scanner.ShowUnprofitable,
		SeedTokens:       c.Scanner.SeedTokens,
		BellmanFordSeeds: c.Scanner.BellmanFordSeeds,
		BatchSize:        c.Scanner.BatchSize,
		Workers:          c.Scanner.Workers,
	}
	if c.Scanner.MinProfitLamports > 0 {
		sc.MinProfitThreshold = big.NewInt(c.Scanner.MinProfitLamports)
	}
	if c.Scanner.ReferenceLamports > 0 {
		sc.ReferenceAmount = big.NewInt(c.Scanner.ReferenceLamports)
	}
	return sc
}

func LoadConfig(cfgFile string) (*Config, error) {
	explicit := cfgFile != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".arbscan.yaml")
	}

	config := DefaultConfig()
	raw, err := os.ReadFile(cfgFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine, defaults plus environment apply.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.ValidateConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func SaveConfig(cfg *Config, cfgFile string) error {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		cfgFile = filepath.Join(home, ".arbscan.yaml")
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(cfgFile, raw, 0o644)
}

func DefaultConfig() *Config {
	return &Config{
		Scanner: ScanConfig{
			MinProfitLamports: 10_000_000, // 0.01 SOL
			MinProfitPercent:  0.5,
			MaxHops:           4,
			ReferenceLamports: types.DefaultReferenceLamports,
			SeedTokens:        types.DefaultSeedTokens,
			BellmanFordSeeds:  types.DefaultBellmanFordSeeds,
			BatchSize:         types.DefaultBatchSize,
			Workers:           types.DefaultWorkers,
		},
		Fetchers: FetcherConfig{
			Timeout:        Duration(10 * time.Second),
			RaydiumURL:     "https://api.raydium.io/v2/main/pairs",
			OrcaURL:        "https://api.orca.so/v1/whirlpool/list",
			MeteoraEnabled: true,
			RequestsPerSec: 2,
			Burst:          4,
			MinTVL:         1_000,
		},
		Watch: WatchConfig{
			Schedule:    "@every 30s",
			TopN:        10,
			SuppressFor: Duration(5 * time.Minute),
		},
		Redis: RedisConfig{
			TTL:         Duration(15 * time.Minute),
			Channel:     "arbscan.opportunities",
			RecentLimit: 100,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9105",
		},
	}
}

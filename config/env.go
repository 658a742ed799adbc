package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file is read.
const (
	EnvMinProfitLamports = "ARBSCAN_MIN_PROFIT_LAMPORTS"
	EnvMinProfitPercent  = "ARBSCAN_MIN_PROFIT_PERCENT"
	EnvMaxHops           = "ARBSCAN_MAX_HOPS"
	EnvShowUnprofitable  = "ARBSCAN_SHOW_UNPROFITABLE"
	EnvRaydiumURL        = "ARBSCAN_RAYDIUM_URL"
	EnvOrcaURL           = "ARBSCAN_ORCA_URL"
	EnvSchedule          = "ARBSCAN_SCHEDULE"
	EnvRedisAddr         = "ARBSCAN_REDIS_ADDR"
	EnvRedisPassword     = "ARBSCAN_REDIS_PASSWORD"
	EnvRedisDB           = "ARBSCAN_REDIS_DB"
	EnvMetricsEnabled    = "ARBSCAN_METRICS_ENABLED"
	EnvMetricsListen     = "ARBSCAN_METRICS_LISTEN"
)

// LoadEnv loads environment variables from a .env file when present.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetRequiredEnv returns the value of key or an error when it is unset.
func GetRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s not set", key)
	}
	return value, nil
}

func applyEnvOverrides(cfg *Config) {
	envInt64(EnvMinProfitLamports, &cfg.Scanner.MinProfitLamports)
	envFloat(EnvMinProfitPercent, &cfg.Scanner.MinProfitPercent)
	envInt(EnvMaxHops, &cfg.Scanner.MaxHops)
	envBool(EnvShowUnprofitable, &cfg.Scanner.ShowUnprofitable)
	envString(EnvRaydiumURL, &cfg.Fetchers.RaydiumURL)
	envString(EnvOrcaURL, &cfg.Fetchers.OrcaURL)
	envString(EnvSchedule, &cfg.Watch.Schedule)
	envString(EnvRedisAddr, &cfg.Redis.Addr)
	envString(EnvRedisPassword, &cfg.Redis.Password)
	envInt(EnvRedisDB, &cfg.Redis.DB)
	envBool(EnvMetricsEnabled, &cfg.Metrics.Enabled)
	envString(EnvMetricsListen, &cfg.Metrics.Listen)
}

func envString(key string, dst *string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func envInt(key string, dst *int) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			*dst = parsed
		}
	}
}

func envInt64(key string, dst *int64) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func envFloat(key string, dst *float64) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*dst = parsed
		}
	}
}

func envBool(key string, dst *bool) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*dst = parsed
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Dataset + model artifact
	Data  DataConfig
	Model ModelConfig

	// Dashboard controls
	Dashboard DashboardConfig

	// Redis
	Redis RedisConfig

	// Report export
	Export ExportConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DataConfig describes the input CSV
type DataConfig struct {
	Path     string
	SkipRows int // preamble lines before the first data row
}

// ModelConfig describes the regression model artifact
type ModelConfig struct {
	Path string
}

// DashboardConfig holds defaults for the interactive controls
type DashboardConfig struct {
	DefaultReductionPct int
	ReductionStepPct    int
	TopN                int

	// Prediction endpoint throttling (per process, or shared when Redis is enabled)
	PredictRatePerSec int
	PredictRateBurst  int

	ChartCacheTTL time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ExportConfig controls workbook/chart export
type ExportConfig struct {
	Dir      string
	Schedule string // cron expression with seconds; empty disables the scheduled export
}

// Load reads configuration from the environment (and .env, if found).
// Malformed numbers, booleans and durations are errors, not silent defaults.
// ⭐ SSOT: the only function that reads the process environment
func Load() (*Config, error) {
	loadEnvFile()
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	e := &env{lookup: lookup}

	cfg := &Config{
		Port: e.str("PORT", "8080"),
		Env:  e.str("ENV", "development"),

		Data: DataConfig{
			Path:     e.str("DATA_PATH", "data/hiv_patients.csv"),
			SkipRows: e.int("DATA_SKIP_ROWS", 2),
		},
		Model: ModelConfig{
			Path: e.str("MODEL_PATH", "model/model.yaml"),
		},

		Dashboard: DashboardConfig{
			DefaultReductionPct: e.int("DEFAULT_REDUCTION_PCT", 10),
			ReductionStepPct:    e.int("REDUCTION_STEP_PCT", 5),
			TopN:                e.int("TOP_N", 5),
			PredictRatePerSec:   e.int("PREDICT_RATE_PER_SEC", 10),
			PredictRateBurst:    e.int("PREDICT_RATE_BURST", 20),
			ChartCacheTTL:       e.duration("CHART_CACHE_TTL", 10*time.Minute),
		},

		Redis: RedisConfig{
			Host:     e.str("REDIS_HOST", "localhost"),
			Port:     e.str("REDIS_PORT", "6379"),
			Password: e.str("REDIS_PASSWORD", ""),
			DB:       e.int("REDIS_DB", 0),
			Enabled:  e.bool("REDIS_ENABLED", false),
		},

		Export: ExportConfig{
			Dir:      e.str("EXPORT_DIR", "export"),
			Schedule: e.str("EXPORT_SCHEDULE", ""),
		},

		LogLevel:  e.str("LOG_LEVEL", "info"),
		LogFormat: e.str("LOG_FORMAT", "json"),

		MetricsEnabled: e.bool("METRICS_ENABLED", true),
	}

	if err := errors.Join(append(e.errs, cfg.validate()...)...); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// validate returns every rule the loaded values break
func (c *Config) validate() []error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Data.Path == "" {
		fail("DATA_PATH is required")
	}
	if c.Data.SkipRows < 0 {
		fail("DATA_SKIP_ROWS must be >= 0")
	}
	if c.Model.Path == "" {
		fail("MODEL_PATH is required")
	}

	switch c.Env {
	case "development", "staging", "production":
	default:
		fail("ENV must be one of: development, staging, production")
	}

	d := c.Dashboard
	if d.ReductionStepPct <= 0 || d.ReductionStepPct > 100 {
		fail("REDUCTION_STEP_PCT must be in 1..100")
	} else if d.DefaultReductionPct < 0 || d.DefaultReductionPct > 100 || d.DefaultReductionPct%d.ReductionStepPct != 0 {
		fail("DEFAULT_REDUCTION_PCT must be in 0..100 and a multiple of REDUCTION_STEP_PCT")
	}
	if d.TopN <= 0 {
		fail("TOP_N must be > 0")
	}
	if d.PredictRatePerSec <= 0 || d.PredictRateBurst <= 0 {
		fail("PREDICT_RATE_PER_SEC and PREDICT_RATE_BURST must be > 0")
	}
	if d.ChartCacheTTL < 0 {
		fail("CHART_CACHE_TTL must be >= 0")
	}

	return errs
}

// loadEnvFile loads the first .env found in the working directory or next to the binary
func loadEnvFile() {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths, filepath.Join(dir, ".env"), filepath.Join(dir, "..", ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// env reads typed values and collects parse errors
type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	return v, ok && v != ""
}

func (e *env) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (e *env) bool(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

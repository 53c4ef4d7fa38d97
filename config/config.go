// Package config loads the service configuration from YAML, an optional .env
// file and CHURN_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is the full service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Model     ModelConfig     `yaml:"model"`
	Log       LogConfig       `yaml:"log"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// ArtifactsConfig locates the scaler and model and bounds their fetch.
type ArtifactsConfig struct {
	Scaler       string        `yaml:"scaler"`
	Model        string        `yaml:"model"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MaxBytes     int64         `yaml:"max_bytes"`
	CacheSize    int           `yaml:"cache_size"`
	Preload      bool          `yaml:"preload"`
}

// ModelConfig holds decoding settings.
type ModelConfig struct {
	PositiveClass float64 `yaml:"positive_class"`
}

// LogConfig selects log level, format and optional rotated file output.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Artifacts: ArtifactsConfig{
			Scaler:       "models/scaler.json",
			Model:        "models/churn_model.json",
			FetchTimeout: 15 * time.Second,
			MaxBytes:     64 << 20,
			CacheSize:    4,
			Preload:      true,
		},
		Model: ModelConfig{PositiveClass: 1},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DefaultPaths are tried in order when Load is called with an empty path, so
// the binaries work from the repo root and from cmd/.
var DefaultPaths = []string{"config.yaml", filepath.Join("..", "config.yaml")}

// Load reads path over the defaults. With an empty path the first existing
// entry of DefaultPaths is used, and having none is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = firstExisting(DefaultPaths)
	}
	loadDotEnv(filepath.Dir(path))
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	cfg.Artifacts.Scaler = relativeTo(dir, cfg.Artifacts.Scaler)
	cfg.Artifacts.Model = relativeTo(dir, cfg.Artifacts.Model)
	return nil
}

// relativeTo anchors a relative local path at the config file's directory.
// URLs, absolute paths and drive-letter paths are returned unchanged.
func relativeTo(dir, locator string) string {
	if locator == "" || strings.Contains(locator, "://") || filepath.IsAbs(locator) || isDrivePath(locator) {
		return locator
	}
	return filepath.Join(dir, locator)
}

func isDrivePath(s string) bool {
	if len(s) < 2 || s[1] != ':' {
		return false
	}
	c := s[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// loadDotEnv never overrides variables that are already set.
func loadDotEnv(dir string) {
	for _, p := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

type lookupFunc func(string) (string, bool)

// applyEnv overlays the CHURN_* variables.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	parse := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("CHURN_SCALER_SOURCE", &cfg.Artifacts.Scaler)
	str("CHURN_MODEL_SOURCE", &cfg.Artifacts.Model)
	str("CHURN_LOG_LEVEL", &cfg.Log.Level)
	str("CHURN_LOG_FORMAT", &cfg.Log.Format)
	str("CHURN_LOG_FILE", &cfg.Log.File)
	parse("CHURN_HTTP_PORT", func(v string) (err error) {
		cfg.HTTP.Port, err = strconv.Atoi(v)
		return err
	})
	parse("CHURN_HTTP_ALLOWED_ORIGINS", func(v string) error {
		cfg.HTTP.AllowedOrigins = splitList(v)
		return nil
	})
	parse("CHURN_FETCH_TIMEOUT", func(v string) (err error) {
		cfg.Artifacts.FetchTimeout, err = time.ParseDuration(v)
		return err
	})
	parse("CHURN_PRELOAD", func(v string) (err error) {
		cfg.Artifacts.Preload, err = strconv.ParseBool(v)
		return err
	})
	parse("CHURN_POSITIVE_CLASS", func(v string) (err error) {
		cfg.Model.PositiveClass, err = strconv.ParseFloat(v, 64)
		return err
	})
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("http.max_body_bytes must be positive"))
	}
	if strings.TrimSpace(c.Artifacts.Scaler) == "" {
		errs = append(errs, errors.New("artifacts.scaler is required"))
	}
	if strings.TrimSpace(c.Artifacts.Model) == "" {
		errs = append(errs, errors.New("artifacts.model is required"))
	}
	if c.Artifacts.FetchTimeout <= 0 {
		errs = append(errs, errors.New("artifacts.fetch_timeout must be positive"))
	}
	if c.Artifacts.MaxBytes <= 0 {
		errs = append(errs, errors.New("artifacts.max_bytes must be positive"))
	}
	if c.Artifacts.CacheSize <= 0 {
		errs = append(errs, errors.New("artifacts.cache_size must be positive"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, console", c.Log.Format))
	}
	return errors.Join(errs...)
}

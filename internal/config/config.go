// Package config loads the server configuration from defaults, an optional
// .env file, an optional YAML file and JOBFORM_* environment variables, in
// that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JOBFORM_"

type Config struct {
	Addr          string        `yaml:"addr"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	Title         string        `yaml:"title"`
	TemplatesDir  string        `yaml:"templates_dir"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	MaxSessions   int           `yaml:"max_sessions"`
	SecureCookies bool          `yaml:"secure_cookies"`
	RateLimit     RateLimit     `yaml:"rate_limit"`
	Theme         Theme         `yaml:"theme"`
}

// RateLimit configures the per-client token bucket. RPS <= 0 disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Theme selects the page theme. Tokens become CSS variables; Variants holds
// per-variant token overrides.
type Theme struct {
	Name        string                       `yaml:"name"`
	Variant     string                       `yaml:"variant"`
	Tokens      map[string]string            `yaml:"tokens"`
	Variants    map[string]map[string]string `yaml:"variants"`
	AssetPrefix string                       `yaml:"asset_prefix"`
	Stylesheet  string                       `yaml:"stylesheet"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:          ":8080",
		ShutdownGrace: 10 * time.Second,
		LogLevel:      "info",
		LogFormat:     "text",
		Title:         "Job Application Form",
		SessionTTL:    30 * time.Minute,
		MaxSessions:   10000,
		RateLimit:     RateLimit{RPS: 5, Burst: 20},
	}
}

// Load builds the configuration. A missing .env file is ignored; a missing
// YAML file is an error only when path is non-empty.
func Load(path string) (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.ShutdownGrace < 0 {
		errs = append(errs, errors.New("shutdown_grace must not be negative"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, errors.New("max_sessions must not be negative"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q must be text or json", c.LogFormat))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit.burst must be positive when rps is set"))
	}
	if c.Theme.Variant != "" && c.Theme.Name == "" {
		errs = append(errs, errors.New("theme.variant requires theme.name"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := get("TITLE"); ok {
		cfg.Title = v
	}
	if v, ok := get("TEMPLATES_DIR"); ok {
		cfg.TemplatesDir = v
	}
	if v, ok := get("THEME"); ok {
		cfg.Theme.Name = v
	}
	if v, ok := get("THEME_VARIANT"); ok {
		cfg.Theme.Variant = v
	}

	var err error
	if v, ok := get("SHUTDOWN_GRACE"); ok {
		if cfg.ShutdownGrace, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %sSHUTDOWN_GRACE: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("SESSION_TTL"); ok {
		if cfg.SessionTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %sSESSION_TTL: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("MAX_SESSIONS"); ok {
		if cfg.MaxSessions, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: %sMAX_SESSIONS: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("SECURE_COOKIES"); ok {
		if cfg.SecureCookies, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("config: %sSECURE_COOKIES: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("RATE_LIMIT_RPS"); ok {
		if cfg.RateLimit.RPS, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("config: %sRATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("RATE_LIMIT_BURST"); ok {
		if cfg.RateLimit.Burst, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: %sRATE_LIMIT_BURST: %w", EnvPrefix, err)
		}
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/renderers/html"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "jobform.yaml")
	writeFile(t, path, `
addr: ":9000"
log_format: json
session_ttl: 5m
rate_limit:
  rps: 2
  burst: 4
theme:
  name: acme
  variant: dark
  tokens:
    brand: "#123456"
  variants:
    dark:
      brand: "#654321"
  asset_prefix: /assets/acme
  stylesheet: jobform.css
`)
	t.Setenv("JOBFORM_ADDR", ":9100")
	t.Setenv("JOBFORM_RATE_LIMIT_BURST", "8")
	t.Setenv("JOBFORM_TITLE", "  ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("env should override file addr, got %q", cfg.Addr)
	}
	if cfg.LogFormat != "json" || cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.RateLimit != (RateLimit{RPS: 2, Burst: 8}) {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Title != Default().Title {
		t.Fatalf("blank env should not override title, got %q", cfg.Title)
	}

	manifest := cfg.Theme.Manifest()
	if manifest == nil || manifest.Name != "acme" {
		t.Fatalf("expected manifest, got %+v", manifest)
	}
	if manifest.Assets.Files[html.StylesheetAsset] != "jobform.css" || manifest.Assets.Prefix != "/assets/acme" {
		t.Fatalf("unexpected assets %+v", manifest.Assets)
	}
	if manifest.Variants["dark"].Tokens["brand"] != "#654321" {
		t.Fatalf("unexpected variants %+v", manifest.Variants)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, ".env"), "JOBFORM_SESSION_TTL=90s\n")
	t.Setenv("JOBFORM_SESSION_TTL", "")
	os.Unsetenv("JOBFORM_SESSION_TTL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != 90*time.Second {
		t.Fatalf("expected .env value, got %s", cfg.SessionTTL)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "addr: [\n")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}

	t.Setenv("JOBFORM_SESSION_TTL", "soon")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "JOBFORM_SESSION_TTL") {
		t.Fatalf("expected env error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty addr":       func(c *Config) { c.Addr = " " },
		"zero ttl":         func(c *Config) { c.SessionTTL = 0 },
		"bad format":       func(c *Config) { c.LogFormat = "xml" },
		"burst missing":    func(c *Config) { c.RateLimit = RateLimit{RPS: 1} },
		"variant no theme": func(c *Config) { c.Theme.Variant = "dark" },
		"negative grace":   func(c *Config) { c.ShutdownGrace = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if Default().Theme.Manifest() != nil {
		t.Fatalf("expected nil manifest without theme name")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

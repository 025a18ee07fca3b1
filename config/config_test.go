package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadConfigFileYAML(t *testing.T) {
	p := writeFile(t, "config.yaml", `
app:
  AppPort: "9090"
  RateLimitPerMinute: 30
  AllowedOrigins: ["http://localhost:3000"]
api:
  BaseURL: http://api.local/
  TimeoutSec: 3
  FailureSentinel: boom
ui:
  PageSize: 20
  NavigateDelayMs: 500
  BrandName: Acme
redis:
  Enabled: true
  RedisPort: 6380
log:
  Level: debug
  Compress: true
`)
	var c AppConfig
	if err := loadConfigFile(p, &c); err != nil {
		t.Fatalf("load: %v", err)
	}
	applyDefaults(&c)

	if c.AppPort != "9090" || c.RateLimitPerMinute != 30 {
		t.Fatalf("app section: %+v", c)
	}
	if len(c.AllowedOrigins) != 1 || c.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
	if c.APIBaseURL != "http://api.local" || c.APITimeout() != 3*time.Second || c.Sentinel() != "boom" {
		t.Fatalf("api section: %+v", c)
	}
	if c.PageSize != 20 || c.NavigateDelay() != 500*time.Millisecond || c.BrandName != "Acme" {
		t.Fatalf("ui section: %+v", c)
	}
	if !c.RedisEnabled || c.RedisPort != 6380 || c.RedisHost != "127.0.0.1" {
		t.Fatalf("redis section: %+v", c)
	}
	if c.LogLevel != "debug" || !c.LogCompress {
		t.Fatalf("log section: %+v", c)
	}
	// untouched keys keep their defaults
	if c.ToastTTL() != 4*time.Second || c.HeaderTitle != "Frontend Advanced Bootcamp Task" {
		t.Fatalf("defaults: %+v", c)
	}
}

func TestLoadConfigFileJSONFlatKeys(t *testing.T) {
	p := writeFile(t, "config.json", `{"AppPort": "7000", "PageSize": 6, "LogLevel": "warn"}`)
	var c AppConfig
	if err := loadConfigFile(p, &c); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.AppPort != "7000" || c.PageSize != 6 || c.LogLevel != "warn" {
		t.Fatalf("flat keys: %+v", c)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	var c AppConfig
	err := loadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"), &c)
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	if c.PageSize != 12 || c.NavigateDelayMs != 2000 || c.ToastTTLMs != 4000 {
		t.Fatalf("ui defaults: %+v", c)
	}
	if c.APIBaseURL != "https://jsonplaceholder.typicode.com" || c.Sentinel() != "error" {
		t.Fatalf("api defaults: %+v", c)
	}
	if c.SessionTTL() != 30*time.Minute {
		t.Fatalf("session ttl = %v", c.SessionTTL())
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("FAILURE_SENTINEL", "-")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("API_BASE_URL", "http://mock.test/")

	var c AppConfig
	applyDefaults(&c)
	applyEnvOverrides(&c)

	if c.PageSize != 5 {
		t.Fatalf("page size = %d", c.PageSize)
	}
	if c.Sentinel() != "" {
		t.Fatalf("sentinel should be disabled, got %q", c.Sentinel())
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
	if !c.RedisEnabled || c.APIBaseURL != "http://mock.test" {
		t.Fatalf("overrides: %+v", c)
	}
}

func TestSetFillsDefaults(t *testing.T) {
	Set(AppConfig{PageSize: 3})
	got := Get()
	if got.PageSize != 3 || got.AppPort != "8080" {
		t.Fatalf("Get after Set: %+v", got)
	}
}

package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds file and environment driven configuration values.
type AppConfig struct {
	AppPort string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Remote post/user API
	APIBaseURL      string
	APITimeoutSec   int
	FailureSentinel string
	// UI behaviour
	PageSize          int
	NavigateDelayMs   int
	ToastTTLMs        int
	SessionTTLMinutes int
	BrandName         string
	HeaderTitle       string
	// HTTP surface
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Redis for the duplicate-submit guard
	RedisEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// sentinelDisabled turns the simulated create failure off when used as FailureSentinel.
const sentinelDisabled = "-"

var cfg AppConfig
var loaded bool

// Load reads configuration once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: config file -> defaults -> .env -> environment variables
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		err := loadConfigFile(filepath.Join("config", name), &cfg)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("config: ignoring %s: %v", name, err)
		}
	}

	applyDefaults(&cfg)

	// .env is optional; real environment variables still win
	_ = godotenv.Load()
	applyEnvOverrides(&cfg)

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Tests use it to avoid touching the filesystem.
func Set(c AppConfig) {
	applyDefaults(&c)
	cfg = c
	loaded = true
}

// APITimeout is the per-call timeout for the remote API.
func (c AppConfig) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSec) * time.Second
}

// NavigateDelay is how long the create view waits before returning to the list.
func (c AppConfig) NavigateDelay() time.Duration {
	return time.Duration(c.NavigateDelayMs) * time.Millisecond
}

// ToastTTL is how long a toast stays up before it dismisses itself.
func (c AppConfig) ToastTTL() time.Duration {
	return time.Duration(c.ToastTTLMs) * time.Millisecond
}

// SessionTTL is the idle time after which a browser session is dropped.
func (c AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Sentinel returns the title that forces a create failure, or "" when disabled.
func (c AppConfig) Sentinel() string {
	if c.FailureSentinel == sentinelDisabled {
		return ""
	}
	return c.FailureSentinel
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadConfigFile reads a YAML or JSON file into out. A missing file returns an
// error wrapping os.ErrNotExist.
func loadConfigFile(path string, out *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case int:
				return t
			case int64:
				return int(t)
			case float64:
				return int(t)
			case string:
				i, _ := strconv.Atoi(t)
				return i
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}
	section := func(name string) (map[string]any, bool) {
		m, ok := raw[name].(map[string]any)
		return m, ok
	}

	if app, ok := section("app"); ok {
		out.AppPort = getString(app, "AppPort")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := section("gin"); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if api, ok := section("api"); ok {
		out.APIBaseURL = getString(api, "BaseURL")
		if v := getInt(api, "TimeoutSec"); v != 0 {
			out.APITimeoutSec = v
		}
		if v := getString(api, "FailureSentinel"); v != "" {
			out.FailureSentinel = v
		}
	}

	if ui, ok := section("ui"); ok {
		if v := getInt(ui, "PageSize"); v != 0 {
			out.PageSize = v
		}
		if v := getInt(ui, "NavigateDelayMs"); v != 0 {
			out.NavigateDelayMs = v
		}
		if v := getInt(ui, "ToastTTLMs"); v != 0 {
			out.ToastTTLMs = v
		}
		if v := getInt(ui, "SessionTTLMinutes"); v != 0 {
			out.SessionTTLMinutes = v
		}
		out.BrandName = getString(ui, "BrandName")
		out.HeaderTitle = getString(ui, "HeaderTitle")
	}

	if rds, ok := section("redis"); ok {
		out.RedisEnabled = getBool(rds, "Enabled")
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := section("log"); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getString(lg, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(lg, "GinPath"); v != "" {
			out.GinPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	// Flat keys for backward compatibility
	if out.AppPort == "" {
		out.AppPort = getString(raw, "AppPort")
	}
	if out.APIBaseURL == "" {
		out.APIBaseURL = getString(raw, "APIBaseURL")
	}
	if out.PageSize == 0 {
		out.PageSize = getInt(raw, "PageSize")
	}
	if out.GinMode == "" {
		out.GinMode = getString(raw, "GinMode")
	}
	if out.LogLevel == "" {
		out.LogLevel = getString(raw, "LogLevel")
	}
	if out.LogPath == "" {
		out.LogPath = getString(raw, "LogPath")
	}
	if out.RedisHost == "" {
		out.RedisHost = getString(raw, "RedisHost")
	}
	if len(out.AllowedOrigins) == 0 {
		out.AllowedOrigins = getStringSlice(raw, "AllowedOrigins")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://jsonplaceholder.typicode.com"
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.APITimeoutSec == 0 {
		c.APITimeoutSec = 10
	}
	if c.FailureSentinel == "" {
		c.FailureSentinel = "error"
	}
	if c.PageSize <= 0 {
		c.PageSize = 12
	}
	if c.NavigateDelayMs == 0 {
		c.NavigateDelayMs = 2000
	}
	if c.ToastTTLMs == 0 {
		c.ToastTTLMs = 4000
	}
	if c.SessionTTLMinutes == 0 {
		c.SessionTTLMinutes = 30
	}
	if c.BrandName == "" {
		c.BrandName = "Elevate"
	}
	if c.HeaderTitle == "" {
		c.HeaderTitle = "Frontend Advanced Bootcamp Task"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("API_BASE_URL", ""); v != "" {
		c.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := getEnv("API_TIMEOUT_SEC", ""); v != "" {
		c.APITimeoutSec = mustParseInt(v)
	}
	if v := getEnv("FAILURE_SENTINEL", ""); v != "" {
		c.FailureSentinel = v
	}
	if v := getEnv("PAGE_SIZE", ""); v != "" {
		c.PageSize = mustParseInt(v)
	}
	if v := getEnv("NAVIGATE_DELAY_MS", ""); v != "" {
		c.NavigateDelayMs = mustParseInt(v)
	}
	if v := getEnv("TOAST_TTL_MS", ""); v != "" {
		c.ToastTTLMs = mustParseInt(v)
	}
	if v := getEnv("SESSION_TTL_MINUTES", ""); v != "" {
		c.SessionTTLMinutes = mustParseInt(v)
	}
	if v := getEnv("BRAND_NAME", ""); v != "" {
		c.BrandName = v
	}
	if v := getEnv("HEADER_TITLE", ""); v != "" {
		c.HeaderTitle = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
	if v := getEnv("REDIS_ENABLED", ""); v != "" {
		c.RedisEnabled = v == "true"
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// README: Config loader: .env file, optional YAML file, then environment overrides.
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

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"

	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1"
	DefaultGeminiModel   = "gemini-2.5-flash-lite"
)

var ErrMissingAPIKey = errors.New("environment variable GEMINI_API_KEY is required")

type AIConfig struct {
	GeminiKey   string
	Model       string
	BaseURL     string
	Transport   string
	PromptStyle string
	Timeout     time.Duration
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	SampleRatio float64
	ServiceName string
}

type Config struct {
	HTTP struct {
		Port         string
		AllowOrigins []string
	}
	AI   AIConfig
	Maps struct {
		APIKey   string
		CacheTTL time.Duration
	}
	Redis struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Log struct {
		Mode string
	}
	Otel OtelConfig
}

// fileConfig mirrors the YAML layout. Durations stay strings until parsed.
type fileConfig struct {
	Port   string `yaml:"port"`
	Gemini struct {
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		BaseURL   string `yaml:"base_url"`
		Transport string `yaml:"transport"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"gemini"`
	PromptStyle string `yaml:"prompt_style"`
	Maps        struct {
		APIKey   string `yaml:"api_key"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"maps"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`
	LogMode string `yaml:"log_mode"`
}

// Load reads an optional .env from the working directory and then builds the
// configuration from the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from CONFIG_FILE (if set) and the environment.
// Environment variables win over the file; the file wins over defaults.
func FromEnv() (Config, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	var cfg Config
	cfg.HTTP.Port = envOrDefault("PORT", orDefault(file.Port, "5000"))
	cfg.HTTP.AllowOrigins = envList("CORS_ALLOW_ORIGINS", orDefaultList(file.CORS.AllowOrigins, []string{"*"}))

	cfg.AI.GeminiKey = envOrDefault("GEMINI_API_KEY", file.Gemini.APIKey)
	cfg.AI.Model = envOrDefault("GEMINI_MODEL", orDefault(file.Gemini.Model, DefaultGeminiModel))
	cfg.AI.BaseURL = strings.TrimRight(envOrDefault("GEMINI_BASE_URL", orDefault(file.Gemini.BaseURL, DefaultGeminiBaseURL)), "/")
	cfg.AI.Transport = strings.ToLower(envOrDefault("GEMINI_TRANSPORT", orDefault(file.Gemini.Transport, TransportREST)))
	cfg.AI.PromptStyle = strings.ToLower(envOrDefault("PROMPT_STYLE", orDefault(file.PromptStyle, "brief")))

	var err error
	if cfg.AI.Timeout, err = envOrDefaultDuration("UPSTREAM_TIMEOUT", orDefault(file.Gemini.Timeout, "60s")); err != nil {
		return Config{}, err
	}

	cfg.Maps.APIKey = envOrDefault("GOOGLE_MAPS_API_KEY", file.Maps.APIKey)
	if cfg.Maps.CacheTTL, err = envOrDefaultDuration("GEOCODE_CACHE_TTL", orDefault(file.Maps.CacheTTL, "24h")); err != nil {
		return Config{}, err
	}
	cfg.Redis.Addr = envOrDefault("REDIS_ADDR", file.Redis.Addr)
	cfg.DB.DSN = envOrDefault("DATABASE_URL", file.Database.URL)
	cfg.Log.Mode = envOrDefault("LOG_MODE", orDefault(file.LogMode, "development"))

	cfg.Otel.Enabled = envBool("OTEL_ENABLED")
	cfg.Otel.Endpoint = envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg.Otel.Insecure = envBool("OTEL_EXPORTER_OTLP_INSECURE")
	cfg.Otel.SampleRatio = envOrDefaultFloat("OTEL_SAMPLER_RATIO", 0.1)
	cfg.Otel.ServiceName = envOrDefault("OTEL_SERVICE_NAME", "wanderplan")

	if cfg.AI.GeminiKey == "" {
		return cfg, ErrMissingAPIKey
	}
	switch cfg.AI.Transport {
	case TransportREST, TransportSDK:
	default:
		return cfg, fmt.Errorf("GEMINI_TRANSPORT must be %q or %q, got %q", TransportREST, TransportSDK, cfg.AI.Transport)
	}
	return cfg, nil
}

// Addr is the listen address; the server binds every interface.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.HTTP.Port
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func orDefaultList(v, def []string) []string {
	if len(v) > 0 {
		return v
	}
	return def
}

func envList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envOrDefaultDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must not be negative", key)
	}
	return d, nil
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

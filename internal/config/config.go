// Package config loads agent-studio configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (AGENT_STUDIO_*), including those from ./.env
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .agent-studio.yaml in current directory
//  2. ~/.config/agent-studio/config.yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "AGENT_STUDIO_"

// Providers accepted by the playground.
var Providers = []string{"mock", "anthropic", "openai", "gemini"}

// Config holds all agent-studio configuration.
type Config struct {
	// Playground LLM settings
	Provider  string `yaml:"provider"` // mock, anthropic, openai, gemini
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int64  `yaml:"max_tokens"`

	// Dashboard
	Theme string `yaml:"theme"` // dark, light

	// Mock API
	Latency     string `yaml:"latency"`      // Go duration string, e.g. "400ms"
	CacheTTL    string `yaml:"cache_ttl"`    // Go duration string, e.g. "30s"
	CatalogFile string `yaml:"catalog_file"` // optional YAML catalog replacing the built-in seed

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error, off

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Tab sections
	Tabs TabsConfig `yaml:"tabs"`

	// Parsed durations (not from YAML, set after loading)
	LatencyDuration  time.Duration `yaml:"-"`
	CacheTTLDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// TabsConfig tunes the animated tab sections.
type TabsConfig struct {
	SlideDuration string `yaml:"slide_duration"`
	FadeDuration  string `yaml:"fade_duration"`
	ReducedMotion bool   `yaml:"reduced_motion"`
	DirectionBase string `yaml:"direction_base"` // displayed, last_selected
	FPS           int    `yaml:"fps"`

	SlideDurationParsed time.Duration `yaml:"-"`
	FadeDurationParsed  time.Duration `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Provider:  "mock",
		MaxTokens: 1024,
		Theme:     "dark",
		Latency:   "400ms",
		CacheTTL:  "30s",
		LogLevel:  "info",
		Tabs: TabsConfig{
			SlideDuration: "300ms",
			FadeDuration:  "200ms",
			DirectionBase: "displayed",
			FPS:           60,
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	if err := mergeEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve parses durations and validates enumerations. Load calls it; call
// it again after changing fields by hand.
func (cfg *Config) Resolve() error {
	if !validProvider(cfg.Provider) {
		return fmt.Errorf("unknown provider %q (want one of %s)", cfg.Provider, strings.Join(Providers, ", "))
	}

	var err error
	cfg.LatencyDuration, err = parseDurationOrDisable(cfg.Latency, 400*time.Millisecond)
	if err != nil {
		return fmt.Errorf("invalid latency %q: %w", cfg.Latency, err)
	}
	cfg.CacheTTLDuration, err = parseDurationOrDisable(cfg.CacheTTL, 30*time.Second)
	if err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", cfg.CacheTTL, err)
	}
	cfg.Tabs.SlideDurationParsed, err = parseDurationOrDisable(cfg.Tabs.SlideDuration, 300*time.Millisecond)
	if err != nil {
		return fmt.Errorf("invalid tabs.slide_duration %q: %w", cfg.Tabs.SlideDuration, err)
	}
	cfg.Tabs.FadeDurationParsed, err = parseDurationOrDisable(cfg.Tabs.FadeDuration, 200*time.Millisecond)
	if err != nil {
		return fmt.Errorf("invalid tabs.fade_duration %q: %w", cfg.Tabs.FadeDuration, err)
	}
	// A disabled slide means no motion at all.
	if cfg.Tabs.SlideDurationParsed == 0 {
		cfg.Tabs.ReducedMotion = true
	}
	if cfg.Tabs.FPS <= 0 {
		cfg.Tabs.FPS = 60
	}
	return nil
}

func validProvider(p string) bool {
	for _, v := range Providers {
		if p == v {
			return true
		}
	}
	return false
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".agent-studio.yaml"); err == nil {
		return ".agent-studio.yaml", data, nil
	}

	// 2. ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "agent-studio", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.Latency != "" {
		cfg.Latency = file.Latency
	}
	if file.CacheTTL != "" {
		cfg.CacheTTL = file.CacheTTL
	}
	if file.CatalogFile != "" {
		cfg.CatalogFile = file.CatalogFile
	}
	if file.LogFile != "" {
		cfg.LogFile = file.LogFile
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
	if file.Tabs.SlideDuration != "" {
		cfg.Tabs.SlideDuration = file.Tabs.SlideDuration
	}
	if file.Tabs.FadeDuration != "" {
		cfg.Tabs.FadeDuration = file.Tabs.FadeDuration
	}
	if file.Tabs.ReducedMotion {
		cfg.Tabs.ReducedMotion = true
	}
	if file.Tabs.DirectionBase != "" {
		cfg.Tabs.DirectionBase = file.Tabs.DirectionBase
	}
	if file.Tabs.FPS > 0 {
		cfg.Tabs.FPS = file.Tabs.FPS
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) error {
	strs := map[string]*string{
		"PROVIDER":       &cfg.Provider,
		"MODEL":          &cfg.Model,
		"BASE_URL":       &cfg.BaseURL,
		"API_KEY":        &cfg.APIKey,
		"THEME":          &cfg.Theme,
		"LATENCY":        &cfg.Latency,
		"CACHE_TTL":      &cfg.CacheTTL,
		"CATALOG_FILE":   &cfg.CatalogFile,
		"LOG_FILE":       &cfg.LogFile,
		"LOG_LEVEL":      &cfg.LogLevel,
		"SLIDE_DURATION": &cfg.Tabs.SlideDuration,
		"FADE_DURATION":  &cfg.Tabs.FadeDuration,
		"DIRECTION_BASE": &cfg.Tabs.DirectionBase,
	}
	for name, dst := range strs {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv(envPrefix + "MAX_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_TOKENS %q: %w", envPrefix, v, err)
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv(envPrefix + "REDUCED_MOTION"); v == "true" || v == "1" {
		cfg.Tabs.ReducedMotion = true
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks per provider
	if cfg.APIKey == "" {
		for _, name := range providerKeyVars[cfg.Provider] {
			if v := os.Getenv(name); v != "" {
				cfg.APIKey = v
				break
			}
		}
	}

	// Azure base URL fallback
	if cfg.BaseURL == "" {
		if rn := os.Getenv("AZURE_RESOURCE_NAME"); rn != "" {
			switch cfg.Provider {
			case "anthropic":
				cfg.BaseURL = fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", rn)
			case "openai":
				cfg.BaseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", rn)
			}
		}
	}
	return nil
}

var providerKeyVars = map[string][]string{
	"anthropic": {"ANTHROPIC_API_KEY"},
	"openai":    {"AZURE_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// IsAzureEndpoint returns true if the URL is an Azure endpoint.
func IsAzureEndpoint(url string) bool {
	return strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us")
}

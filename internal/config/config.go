package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/strengthscope/internal/llm"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STRENGTHSCOPE_LLM_MODEL.
const EnvPrefix = "STRENGTHSCOPE"

// ErrInvalidConfig marks configuration that cannot start the program.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type SessionConfig struct {
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type CacheConfig struct {
	Path string `mapstructure:"path"`
}

type LLMSection struct {
	Enabled    bool    `mapstructure:"enabled"`
	LogCalls   bool    `mapstructure:"log_calls"`
	Provider   string  `mapstructure:"provider"`
	Endpoint   string  `mapstructure:"endpoint"`
	Model      string  `mapstructure:"model"`
	APIKey     string  `mapstructure:"api_key"`
	TimeoutMs  int     `mapstructure:"timeout_ms"`
	MaxRetries int     `mapstructure:"max_retries"`
	Temp       float64 `mapstructure:"temperature"`
	MaxTokens  int     `mapstructure:"max_tokens"`
}

// Config is the resolved program configuration.
type Config struct {
	Catalog  string        `mapstructure:"catalog"`
	Edition  string        `mapstructure:"edition"`
	Font     string        `mapstructure:"font"`
	LogLevel string        `mapstructure:"log_level"`
	Server   ServerConfig  `mapstructure:"server"`
	Session  SessionConfig `mapstructure:"session"`
	Redis    RedisConfig   `mapstructure:"redis"`
	Cache    CacheConfig   `mapstructure:"cache"`
	LLM      LLMSection    `mapstructure:"llm"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()
	narrative := llmDefaults.Tasks[llm.TaskNarrative]

	v.SetDefault("catalog", "")
	v.SetDefault("edition", "full")
	v.SetDefault("font", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.capacity", 1024)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("cache.path", defaultCachePath())
	v.SetDefault("llm.enabled", llmDefaults.Enabled)
	v.SetDefault("llm.log_calls", llmDefaults.LogCalls)
	v.SetDefault("llm.provider", string(llmDefaults.Provider))
	v.SetDefault("llm.endpoint", llmDefaults.Endpoint)
	v.SetDefault("llm.model", llmDefaults.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout_ms", llmDefaults.TimeoutMs)
	v.SetDefault("llm.max_retries", llmDefaults.MaxRetries)
	v.SetDefault("llm.temperature", narrative.Temperature)
	v.SetDefault("llm.max_tokens", narrative.MaxTokens)
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".strengthscope", "narratives.db")
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"catalog":   "catalog",
	"edition":   "edition",
	"font":      "font",
	"log-level": "log_level",
	"addr":      "server.addr",
	"llm":       "llm.enabled",
	"model":     "llm.model",
}

// Load resolves configuration from defaults, an optional file, the
// environment and any flags present in fs, in increasing precedence.
// An empty path searches ./strengthscope.yaml and
// $HOME/.strengthscope/strengthscope.yaml; a missing file is not an error
// unless path names it explicitly.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("strengthscope")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".strengthscope"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config: %w", ErrInvalidConfig, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the program cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Session.Backend {
	case SessionBackendMemory:
		if c.Session.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("session.capacity must be positive, got %d", c.Session.Capacity))
		}
	case SessionBackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required for the redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session.backend %q", c.Session.Backend))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := c.LLMConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LLMConfig converts the llm section into the client configuration.
func (c *Config) LLMConfig() llm.LLMConfig {
	cfg := llm.DefaultConfig()
	cfg.Enabled = c.LLM.Enabled
	cfg.LogCalls = c.LLM.LogCalls
	cfg.Provider = llm.Provider(strings.ToLower(c.LLM.Provider))
	cfg.Endpoint = c.LLM.Endpoint
	cfg.Model = c.LLM.Model
	cfg.APIKey = c.LLM.APIKey
	cfg.TimeoutMs = c.LLM.TimeoutMs
	cfg.MaxRetries = c.LLM.MaxRetries
	cfg.Tasks[llm.TaskNarrative] = llm.TaskConfig{
		Temperature: c.LLM.Temp,
		MaxTokens:   c.LLM.MaxTokens,
	}
	return cfg
}

// NarrativeTimeout is the bound applied around one narrative request.
func (c *Config) NarrativeTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutMs) * time.Millisecond
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

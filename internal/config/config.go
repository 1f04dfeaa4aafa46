// Package config handles loading and validating the voxrelay configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingCredential is returned by Validate when the selected completion
// backend has no API key. The key value itself is never echoed; transports
// report it as a generic misconfiguration.
var ErrMissingCredential = errors.New("missing API credential")

// Config is the root configuration for the voxrelay daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Search     SearchConfig     `mapstructure:"search"`
	Completion CompletionConfig `mapstructure:"completion"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	HealthPort     int `mapstructure:"health_port"`
	GRPCHealthPort int `mapstructure:"grpc_health_port"` // 0 disables the gRPC health listener
}

// SearchConfig configures the web-search step.
type SearchConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"` // 0 disables the cache
	CacheSize  int           `mapstructure:"cache_size"`
}

// CompletionConfig selects and configures the text-generation backend.
type CompletionConfig struct {
	Backend string        `mapstructure:"backend"` // "groq" or "gemini"
	Timeout time.Duration `mapstructure:"timeout"`
	Groq    GroqConfig    `mapstructure:"groq"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
}

// GroqConfig holds Groq API settings (OpenAI-compatible chat completions).
type GroqConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Endpoint    string  `mapstructure:"endpoint"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// SpeechConfig selects and configures the text-to-speech backend.
type SpeechConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Backend string           `mapstructure:"backend"` // "groq"
	Timeout time.Duration    `mapstructure:"timeout"`
	Groq    GroqSpeechConfig `mapstructure:"groq"`
}

// GroqSpeechConfig holds Groq speech-synthesis settings. APIKey falls back to
// completion.groq.api_key when empty (single-credential deployments).
type GroqSpeechConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Voice    string `mapstructure:"voice"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./voxrelay.yaml, ./configs/voxrelay.yaml, /etc/voxrelay/voxrelay.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_health_port", 0)
	v.SetDefault("search.enabled", true)
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", "10s")
	v.SetDefault("search.cache_ttl", "90s")
	v.SetDefault("search.cache_size", 256)
	v.SetDefault("completion.backend", "groq")
	v.SetDefault("completion.timeout", "60s")
	v.SetDefault("completion.groq.model", "llama-3.1-8b-instant")
	v.SetDefault("completion.groq.temperature", 0.1)
	v.SetDefault("completion.groq.max_tokens", 200)
	v.SetDefault("completion.groq.endpoint", "https://api.groq.com/openai/v1/chat/completions")
	v.SetDefault("completion.gemini.model", "gemini-2.0-flash")
	v.SetDefault("completion.gemini.temperature", 0.1)
	v.SetDefault("completion.gemini.max_tokens", 200)
	v.SetDefault("speech.enabled", true)
	v.SetDefault("speech.backend", "groq")
	v.SetDefault("speech.timeout", "60s")
	v.SetDefault("speech.groq.model", "canopylabs/orpheus-v1-english")
	v.SetDefault("speech.groq.voice", "troy")
	v.SetDefault("speech.groq.endpoint", "https://api.groq.com/openai/v1/audio/speech")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voxrelay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voxrelay")
	}

	// Environment variables: VOXRELAY_SERVER_PORT, VOXRELAY_COMPLETION_BACKEND, etc.
	v.SetEnvPrefix("VOXRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in credential fields (e.g., "${GROQ_API_KEY}")
	cfg.Completion.Groq.APIKey = resolveEnvRef(cfg.Completion.Groq.APIKey)
	cfg.Completion.Gemini.APIKey = resolveEnvRef(cfg.Completion.Gemini.APIKey)
	cfg.Speech.Groq.APIKey = resolveEnvRef(cfg.Speech.Groq.APIKey)

	// A plain GROQ_API_KEY / GEMINI_API_KEY in the environment works out of
	// the box, matching how the hosting platform injects credentials.
	if cfg.Completion.Groq.APIKey == "" {
		cfg.Completion.Groq.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.Completion.Gemini.APIKey == "" {
		cfg.Completion.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Speech.Groq.APIKey == "" {
		cfg.Speech.Groq.APIKey = cfg.Completion.Groq.APIKey
	}

	return &cfg, nil
}

// Validate checks that the selected backends are usable. Credential absence
// is detected here, before any provider call is attempted.
func (c *Config) Validate() error {
	switch c.Completion.Backend {
	case "groq":
		if c.Completion.Groq.APIKey == "" {
			return fmt.Errorf("%w: completion.groq.api_key (or GROQ_API_KEY)", ErrMissingCredential)
		}
	case "gemini":
		if c.Completion.Gemini.APIKey == "" {
			return fmt.Errorf("%w: completion.gemini.api_key (or GEMINI_API_KEY)", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("unknown completion backend %q", c.Completion.Backend)
	}

	if c.Speech.Enabled && c.Speech.Backend != "groq" {
		return fmt.Errorf("unknown speech backend %q", c.Speech.Backend)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

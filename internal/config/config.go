// Package config loads application configuration from a YAML file with
// environment variable overrides (GLOWBOT_ prefix).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration for the glowbot assistant.
// It is loaded from ~/.glowbot/config.yaml and can be overridden by
// environment variables.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Supervisor SupervisorConfig `mapstructure:"supervisor" yaml:"supervisor"`
	Agent      AgentConfig      `mapstructure:"agent" yaml:"agent"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	// Endpoint is the base URL of an OpenAI-compatible chat API.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Model is the model identifier sent with every request.
	Model string `mapstructure:"model" yaml:"model"`

	// APIKey is the bearer token, if the endpoint requires one.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// RequestTimeout bounds a single completion call.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// StoreConfig configures preference persistence.
type StoreConfig struct {
	// SQLitePath is the preference database file. Empty selects the
	// in-memory store.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// SupervisorConfig tunes turn routing.
type SupervisorConfig struct {
	// HistoryWindow is how many trailing messages routing considers.
	HistoryWindow int `mapstructure:"history_window" yaml:"history_window"`
}

// AgentConfig tunes specialist execution.
type AgentConfig struct {
	// MaxLoops bounds specialist invocations per turn.
	MaxLoops int `mapstructure:"max_loops" yaml:"max_loops"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Pretty enables the human-readable console writer.
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`

	// File is an optional log file path; empty logs to stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Endpoint:       "http://127.0.0.1:11434/v1",
			Model:          "qwen2.5:14b",
			RequestTimeout: 60 * time.Second,
		},
		Store: StoreConfig{
			SQLitePath: "~/.glowbot/preferences.db",
		},
		Supervisor: SupervisorConfig{
			HistoryWindow: 10,
		},
		Agent: AgentConfig{
			MaxLoops: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads configuration from the default location
// (~/.glowbot/config.yaml) and merges with environment variables. If no
// config file exists, it creates one with default values.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return LoadFromPath(filepath.Join(homeDir, ".glowbot", "config.yaml"))
}

// LoadFromPath reads configuration from a specific file path and merges
// with environment variables. If the file doesn't exist, it creates one
// with default values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Example: GLOWBOT_LLM_ENDPOINT, GLOWBOT_LOGGING_LEVEL
	v.SetEnvPrefix("GLOWBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.SQLitePath = expandPath(cfg.Store.SQLitePath)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in zero values with the defaults, so a partial
// config file still produces a runnable configuration.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = defaults.LLM.Endpoint
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaults.LLM.Model
	}
	if c.LLM.RequestTimeout == 0 {
		c.LLM.RequestTimeout = defaults.LLM.RequestTimeout
	}
	if c.Supervisor.HistoryWindow == 0 {
		c.Supervisor.HistoryWindow = defaults.Supervisor.HistoryWindow
	}
	if c.Agent.MaxLoops == 0 {
		c.Agent.MaxLoops = defaults.Agent.MaxLoops
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

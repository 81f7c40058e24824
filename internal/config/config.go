// Package config loads voiceboard configuration from an optional YAML
// file with environment-variable overrides. Env vars win over the file;
// the file wins over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LLM selects and configures the generation backend.
type LLM struct {
	Provider       string `yaml:"provider"` // ollama, nvidia, gemini
	Host           string `yaml:"host"`     // provider host or base URL
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-call dispatcher timeout
	QueueSize      int    `yaml:"queue_size"`
}

// Notify configures the debounced change notifier.
type Notify struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the full application configuration.
type Config struct {
	LLM     LLM     `yaml:"llm"`
	Notify  Notify  `yaml:"notify"`
	Logging Logging `yaml:"logging"`
}

// Load builds the configuration. path may be empty or point at a missing
// file, in which case defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LLM: LLM{
			Provider:       "ollama",
			TimeoutSeconds: 20,
			QueueSize:      10,
		},
		Notify:  Notify{DebounceMs: 1000},
		Logging: Logging{Level: "info"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	applyProviderDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.LLM.Provider, "LLM_PROVIDER")
	setFromEnv(&cfg.LLM.Host, "LLM_HOST")
	setFromEnv(&cfg.LLM.Model, "LLM_MODEL")
	setFromEnv(&cfg.LLM.APIKey, "LLM_API_KEY")
	if cfg.LLM.Provider == "gemini" && cfg.LLM.APIKey == "" {
		setFromEnv(&cfg.LLM.APIKey, "GEMINI_API_KEY")
	}
}

// applyProviderDefaults fills host and model per provider, mirroring each
// backend's conventional defaults.
func applyProviderDefaults(cfg *Config) {
	switch cfg.LLM.Provider {
	case "ollama":
		if cfg.LLM.Host == "" {
			cfg.LLM.Host = "http://localhost:11434"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "llama3.2"
		}
	case "nvidia":
		if cfg.LLM.Host == "" {
			cfg.LLM.Host = "https://integrate.api.nvidia.com/v1/chat/completions"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "meta/llama-4-maverick-17b-128e-instruct"
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Package config loads the run configuration from a YAML file. Every field
// has a working default so a missing file yields a usable configuration;
// the CLI overrides paths and mode flags on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider holds completion-provider settings.
type Provider struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKeyFile string `yaml:"api_key_file"` // file containing the API key; $GESHER_API_KEY wins when set
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Limits mirrors the provider's published quota ceilings.
type Limits struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	TokensPerMinute   int `yaml:"tokens_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

// Conversation holds the turn thresholds of the ending policy.
type Conversation struct {
	HardLimit       int     `yaml:"hard_limit"`        // absolute turn ceiling
	NaturalMin      int     `yaml:"natural_min"`       // closing phrases are honoured from here
	SoftMin         int     `yaml:"soft_min"`          // probabilistic endings start here
	SoftProbability float64 `yaml:"soft_probability"`  // per-turn chance once past SoftMin
	MaxRetries      int     `yaml:"max_retries"`       // generation attempts per turn
	HistoryWindow   int     `yaml:"history_window"`    // turns of history in subject prompts
	EstTokensPerReq int     `yaml:"est_tokens_per_request"`
}

// Pacing holds the conservative delays layered on top of the rate limiter.
type Pacing struct {
	BetweenConversationsSec int `yaml:"between_conversations_sec"`
	LongPauseEverySec       int `yaml:"long_pause_every_sec"` // pause length after every 5th conversation
	LongPauseEvery          int `yaml:"long_pause_every"`
	CooldownSec             int `yaml:"cooldown_sec"` // after a surfaced rate-limit error
}

// Config is the full run configuration.
type Config struct {
	Provider                 Provider     `yaml:"provider"`
	Limits                   Limits       `yaml:"limits"`
	Conversation             Conversation `yaml:"conversation"`
	Pacing                   Pacing       `yaml:"pacing"`
	ProfileDir               string       `yaml:"profile_dir"`
	OutputDir                string       `yaml:"output_dir"`
	EstTokensPerConversation int          `yaml:"est_tokens_per_conversation"`
}

// Default returns the configuration used when no file is given. The quota
// ceilings match the provider's published free-tier limits.
func Default() Config {
	return Config{
		Provider: Provider{
			BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
			Model:      "gemini-2.0-flash-exp",
			APIKeyFile: ".gesher-api-key",
			TimeoutSec: 60,
		},
		Limits: Limits{
			RequestsPerMinute: 10,
			TokensPerMinute:   4_000_000,
			RequestsPerDay:    1500,
		},
		Conversation: Conversation{
			HardLimit:       24,
			NaturalMin:      18,
			SoftMin:         20,
			SoftProbability: 0.3,
			MaxRetries:      3,
			HistoryWindow:   4,
			EstTokensPerReq: 500,
		},
		Pacing: Pacing{
			BetweenConversationsSec: 5,
			LongPauseEverySec:       60,
			LongPauseEvery:          5,
			CooldownSec:             300,
		},
		ProfileDir:               "profiles",
		OutputDir:                "results",
		EstTokensPerConversation: 2000,
	}
}

// Load reads a YAML configuration from path, applied over Default. An empty
// path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ProviderTimeout returns the provider timeout as a duration.
func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSec) * time.Second
}

package config

import (
	"time"
)

// LLMConfig configures the upstream generative model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, chatgpt, claude, azure
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// DefaultModel is the generateContent model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultLLMTimeout bounds a single turn.
const DefaultLLMTimeout = 2 * time.Minute

// ValidProviders lists the provider IDs shown in the selector.
var ValidProviders = []string{"gemini", "chatgpt", "claude", "azure"}

// GetTimeout returns the per-turn timeout as a duration.
func (c LLMConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultLLMTimeout
	}
	return d
}

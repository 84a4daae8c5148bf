// File: internal/services/ai/config.go
package ai

import (
	"fmt"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Model Parameters
	MaxTokens   int
	Temperature float32
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	return nil
}

// DefaultConfig targets Gemini through its OpenAI-compatible endpoint.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/",
		Model:       "gemini-2.5-flash",
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

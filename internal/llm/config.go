package llm

import (
	"fmt"
)

// Config holds the configuration for the OpenAI client.
//
// APIKey may be empty at construction time; credential availability is
// checked lazily when an operation is invoked, so an unconfigured client
// that is never used is not an error.
type Config struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	ChatModel   string  `json:"chat_model"`
	AudioModel  string  `json:"audio_model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API URL is required")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("chat model is required")
	}
	if c.AudioModel == "" {
		return fmt.Errorf("audio model is required")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be greater than 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	return nil
}

// GetHeaders returns the headers for a JSON API request
func (c *Config) GetHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.APIKey,
		"Content-Type":  "application/json",
	}
}

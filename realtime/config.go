package realtime

import "time"

const (
	defaultURL              = "wss://api.openai.com/v1/realtime"
	defaultModel            = "gpt-realtime"
	defaultHandshakeTimeout = 15 * time.Second
)

// Config selects the realtime endpoint and model.
type Config struct {
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	Voice string `json:"voice,omitempty" yaml:"voice,omitempty"`
}

// DefaultConfig targets the OpenAI Realtime API.
func DefaultConfig() Config {
	return Config{
		URL:   defaultURL,
		Model: defaultModel,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.Voice != "" {
		c.Voice = source.Voice
	}
}

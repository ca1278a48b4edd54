package concierge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/concierge/credential"
	"github.com/tailored-agentic-units/concierge/realtime"
	"github.com/tailored-agentic-units/concierge/store"
)

const (
	defaultAgentName    = "Assistant"
	defaultPersona      = "You are a helpful waiter."
	defaultLanguage     = "English"
	defaultCurrency     = "euro"
	defaultPollInterval = time.Second
	defaultObserver     = "slog"
)

// Duration is a time.Duration that reads and writes as a string such as
// "750ms". Plain numbers are read as nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(val)
	case int:
		*d = Duration(val)
	case nil:
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// Config holds initialization parameters for the concierge and each of its
// subsystems.
type Config struct {
	AgentName    string   `json:"agent_name,omitempty" yaml:"agent_name,omitempty"`
	Persona      string   `json:"persona,omitempty" yaml:"persona,omitempty"`
	Language     string   `json:"language,omitempty" yaml:"language,omitempty"`
	Currency     string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	PollInterval Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	MuteOnStart  bool     `json:"mute_on_start,omitempty" yaml:"mute_on_start,omitempty"`
	Observer     string   `json:"observer,omitempty" yaml:"observer,omitempty"`

	Credential credential.Config `json:"credential" yaml:"credential"`
	Realtime   realtime.Config   `json:"realtime" yaml:"realtime"`
	Store      store.Config      `json:"store" yaml:"store"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		AgentName:    defaultAgentName,
		Persona:      defaultPersona,
		Language:     defaultLanguage,
		Currency:     defaultCurrency,
		PollInterval: Duration(defaultPollInterval),
		Observer:     defaultObserver,
		Credential:   credential.DefaultConfig(),
		Realtime:     realtime.DefaultConfig(),
		Store:        store.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Credential.Merge(&source.Credential)
	c.Realtime.Merge(&source.Realtime)
	c.Store.Merge(&source.Store)

	if source.AgentName != "" {
		c.AgentName = source.AgentName
	}
	if source.Persona != "" {
		c.Persona = source.Persona
	}
	if source.Language != "" {
		c.Language = source.Language
	}
	if source.Currency != "" {
		c.Currency = source.Currency
	}
	if source.PollInterval > 0 {
		c.PollInterval = source.PollInterval
	}
	if source.MuteOnStart {
		c.MuteOnStart = true
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON config file, or YAML when the extension is .yaml
// or .yml, merges it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

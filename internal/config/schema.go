// Package config loads the bot client settings file: YAML with environment
// variable expansion, the controller connection settings, logging and
// telemetry options, free-form bot settings and per-module sections.
package config

import (
	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only supported settings format version.
const CurrentVersion = "1"

// Config is the top-level settings structure.
type Config struct {
	// Version is the settings format version. Only "1" is supported.
	Version string `yaml:"version"`

	// Connection holds the controller connection settings.
	Connection conversation.ConnectionSettings `yaml:"blab_connection_settings"`

	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`

	// Bot holds bot-specific settings, passed through untouched.
	Bot map[string]any `yaml:"bot,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	Modules map[string]yaml.Node `yaml:"modules,omitempty"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// TelemetryConfig configures OpenTelemetry trace export. Tracing is disabled
// when OTLPEndpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	ServiceName  string `yaml:"service_name,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
}

// applyDefaults fills unset optional fields.
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "blab-bot"
	}
}

// Settings returns the process-wide settings shared by every conversation.
func (c *Config) Settings() *conversation.Settings {
	return &conversation.Settings{
		Connection: c.Connection,
		Bot:        c.Bot,
	}
}

// Default returns a settings file with the stock values, as written by
// `config init`.
func Default() *Config {
	cfg := &Config{
		Version: CurrentVersion,
		Connection: conversation.ConnectionSettings{
			BotHTTPServerHostname: "127.0.0.1",
			BotHTTPServerPort:     25226,
			ControllerWSURL:       "ws://localhost:8000",
		},
	}
	cfg.applyDefaults()
	return cfg
}

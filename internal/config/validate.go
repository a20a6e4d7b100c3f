package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/C4AI/blab-chatbot-bot-client/internal/core"
)

// Validate checks the settings structure. Every problem found is reported,
// joined with errors.Join.
func Validate(cfg *Config) error {
	var errs []error

	switch cfg.Version {
	case "":
		errs = append(errs, errors.New("config: version field is required"))
	case CurrentVersion:
	default:
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: %q)", cfg.Version, CurrentVersion))
	}

	errs = append(errs, validateConnection(cfg)...)
	errs = append(errs, validateLogging(cfg.Logging)...)

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	return errors.Join(errs...)
}

func validateConnection(cfg *Config) []error {
	var errs []error
	c := cfg.Connection

	if c.BotHTTPServerHostname == "" {
		errs = append(errs, errors.New("config: blab_connection_settings.bot_http_server_hostname is required"))
	}
	if c.BotHTTPServerPort < 1 || c.BotHTTPServerPort > 65535 {
		errs = append(errs, fmt.Errorf("config: blab_connection_settings.bot_http_server_port %d out of range 1-65535", c.BotHTTPServerPort))
	}

	switch u, err := url.Parse(c.ControllerWSURL); {
	case c.ControllerWSURL == "":
		errs = append(errs, errors.New("config: blab_connection_settings.blab_controller_ws_url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("config: blab_connection_settings.blab_controller_ws_url: %w", err))
	case u.Scheme != "ws" && u.Scheme != "wss":
		errs = append(errs, fmt.Errorf("config: blab_connection_settings.blab_controller_ws_url: scheme must be ws or wss, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("config: blab_connection_settings.blab_controller_ws_url: missing host"))
	}

	return errs
}

func validateLogging(l LoggingConfig) []error {
	var errs []error
	if _, err := parseLevel(l.Level); err != nil {
		errs = append(errs, err)
	}
	switch l.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: logging.format %q (want text or json)", l.Format))
	}
	return errs
}

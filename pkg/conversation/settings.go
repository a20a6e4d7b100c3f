package conversation

import (
	"net"
	"strconv"
)

// ConnectionSettings holds the parameters used to talk to BLAB Controller.
type ConnectionSettings struct {
	// BotHTTPServerHostname is the address the trigger server listens on.
	BotHTTPServerHostname string `yaml:"bot_http_server_hostname"`

	// BotHTTPServerPort is the port the trigger server listens on.
	BotHTTPServerPort int `yaml:"bot_http_server_port"`

	// ControllerWSURL is the controller base address for WebSocket connections
	// (e.g. "ws://localhost:8000").
	ControllerWSURL string `yaml:"blab_controller_ws_url"`
}

// Addr returns the host:port the trigger server binds to.
func (c ConnectionSettings) Addr() string {
	return net.JoinHostPort(c.BotHTTPServerHostname, strconv.Itoa(c.BotHTTPServerPort))
}

// Settings is shared, read-only by convention, across all sessions of a
// process. Bot holds free-form, bot-specific values from the configuration
// file.
type Settings struct {
	Connection ConnectionSettings `yaml:"blab_connection_settings"`
	Bot        map[string]any     `yaml:"bot"`
}

// BotString returns the string value of a bot-specific setting, or def when it
// is absent or not a string.
func (s *Settings) BotString(key, def string) string {
	if s == nil {
		return def
	}
	if v, ok := s.Bot[key].(string); ok {
		return v
	}
	return def
}

// BotBool returns the boolean value of a bot-specific setting, or def when it
// is absent or not a boolean.
func (s *Settings) BotBool(key string, def bool) bool {
	if s == nil {
		return def
	}
	if v, ok := s.Bot[key].(bool); ok {
		return v
	}
	return def
}

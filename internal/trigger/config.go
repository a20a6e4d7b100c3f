package trigger

import "time"

// Config holds the trigger server settings under `modules.trigger.http`. The
// listen address comes from blab_connection_settings.
type Config struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// DialTimeout bounds each controller WebSocket handshake.
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// FrameWriteTimeout bounds each outgoing frame write.
	FrameWriteTimeout time.Duration `yaml:"frame_write_timeout"`

	// MaxBodyBytes caps the size of a trigger request body.
	MaxBodyBytes int `yaml:"max_body_bytes"`
}

// defaults fills zero values.
func (c *Config) defaults() {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 30 * time.Second
	}
	if c.FrameWriteTimeout <= 0 {
		c.FrameWriteTimeout = 10 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 64 << 10
	}
}

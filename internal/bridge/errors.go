// Package bridge connects one conversation session to BLAB Controller over a
// WebSocket and shuttles frames between the connection and the bot's hooks.
package bridge

import "errors"

// Sentinel errors for the bridge package.
var (
	ErrHandshake      = errors.New("bridge: websocket handshake failed")
	ErrInvalidURL     = errors.New("bridge: invalid controller url")
	ErrAlreadyRunning = errors.New("bridge: already running")
	ErrDuplicate      = errors.New("bridge: conversation already has an active bridge")
)

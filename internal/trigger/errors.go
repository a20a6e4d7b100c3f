// Package trigger implements the HTTP endpoint BLAB Controller calls to
// start a conversation. Each accepted request spawns a bridge that connects
// back to the controller.
package trigger

import "errors"

// Sentinel errors for the trigger package.
var (
	ErrMalformedRequest = errors.New("trigger: malformed request")
	ErrNoFactory        = errors.New("trigger: no bot factory registered")
	ErrNoSettings       = errors.New("trigger: no connection settings registered")
)

// Service names resolved from the AppContext.
const (
	ServiceFactory  = "conversation.factory"
	ServiceSettings = "conversation.settings"
	ServiceRedactor = "security.redactor"
	ServiceMetrics  = "metrics.registry"
)

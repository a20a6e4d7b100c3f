package conversation

import "errors"

// Sentinel errors for the conversation package.
var (
	// ErrQueueClosed indicates the outbound queue was closed because the
	// conversation's connection ended.
	ErrQueueClosed = errors.New("conversation: queue closed")
)

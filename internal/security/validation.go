package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Payload limits applied to untrusted JSON.
const (
	DefaultMaxPayloadSize = 64 << 10
	DefaultMaxJSONDepth   = 32
)

// Sentinel errors for payload validation.
var (
	ErrPayloadTooLarge = errors.New("security: payload exceeds maximum size")
	ErrJSONTooDeep     = errors.New("security: JSON nesting exceeds maximum depth")
	ErrInvalidJSON     = errors.New("security: invalid JSON")
)

// ValidatePayload checks that data is at most maxSize bytes of well-formed
// JSON nested no deeper than maxDepth. Non-positive limits select the
// defaults.
func ValidatePayload(data []byte, maxSize, maxDepth int) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxPayloadSize
	}
	if len(data) > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(data), maxSize)
	}
	return validateJSONDepth(data, maxDepth)
}

func validateJSONDepth(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxJSONDepth
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}

		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
			if depth > limit {
				return fmt.Errorf("%w: depth %d (max %d)", ErrJSONTooDeep, depth, limit)
			}
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
}

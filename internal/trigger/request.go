package trigger

import (
	"encoding/json"
	"fmt"
)

// Request is the body of `POST /`.
type Request struct {
	ConversationID   string `json:"conversation_id"`
	BotParticipantID string `json:"bot_participant_id"`
	Session          string `json:"session"`
}

// ParseRequest decodes a trigger body. The body must be a JSON object whose
// conversation_id, bot_participant_id and session are non-empty strings;
// other keys are ignored.
func ParseRequest(body []byte) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	if fields == nil {
		return Request{}, fmt.Errorf("%w: body is not an object", ErrMalformedRequest)
	}

	var req Request
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"conversation_id", &req.ConversationID},
		{"bot_participant_id", &req.BotParticipantID},
		{"session", &req.Session},
	} {
		raw, ok := fields[f.name]
		if !ok {
			return Request{}, fmt.Errorf("%w: missing %s", ErrMalformedRequest, f.name)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return Request{}, fmt.Errorf("%w: %s must be a string", ErrMalformedRequest, f.name)
		}
		if *f.dst == "" {
			return Request{}, fmt.Errorf("%w: empty %s", ErrMalformedRequest, f.name)
		}
	}
	return req, nil
}

package message

import (
	"encoding/json"
	"errors"
)

// Frame is one inbound payload from the persistent connection. Either field,
// or both, may be set.
type Frame struct {
	Message *IncomingMessage
	State   map[string]any
}

// Empty reports whether the frame carries neither a message nor a state.
func (f Frame) Empty() bool {
	return f.Message == nil && f.State == nil
}

// DecodeFrame parses a `{"message": {...}, "state": {...}}` payload.
// Other top-level keys are ignored.
func DecodeFrame(data []byte) (Frame, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Frame{}, decodeErr("", err)
	}
	if top == nil {
		return Frame{}, decodeErr("", errors.New("not an object"))
	}

	var f Frame
	if raw, ok := top["message"]; ok && !isNull(raw) {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Frame{}, decodeErr("message", err)
		}
		msg, err := decodeFields(fields)
		if err != nil {
			return Frame{}, err
		}
		f.Message = &msg
	}
	if raw, ok := top["state"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &f.State); err != nil {
			return Frame{}, decodeErr("state", err)
		}
	}
	return f, nil
}

package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// IncomingMessage is a conversation event received from BLAB Controller.
// Optional fields are left at their zero value when absent from the frame.
type IncomingMessage struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"time"`
	Type        Type      `json:"type"`
	SentByHuman bool      `json:"sent_by_human"`

	Options            []string       `json:"options,omitempty"`
	LocalID            string         `json:"local_id,omitempty"`
	Text               string         `json:"text,omitempty"`
	SenderID           string         `json:"sender_id,omitempty"`
	AdditionalMetadata map[string]any `json:"additional_metadata,omitempty"`
	Event              string         `json:"event,omitempty"`
	QuotedMessageID    string         `json:"quoted_message_id,omitempty"`
}

// IsSystem reports whether the message is a system event.
func (m *IncomingMessage) IsSystem() bool {
	return m.Type == TypeSystem
}

// Decode parses one JSON message object. Unknown keys are ignored; missing or
// malformed required fields (id, time, type, sent_by_human) fail with a
// *DecodeError.
func Decode(data []byte) (IncomingMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return IncomingMessage{}, decodeErr("", err)
	}
	if fields == nil {
		return IncomingMessage{}, decodeErr("", errors.New("not an object"))
	}
	return decodeFields(fields)
}

func decodeFields(fields map[string]json.RawMessage) (IncomingMessage, error) {
	var m IncomingMessage

	if err := required(fields, "id", &m.ID); err != nil {
		return IncomingMessage{}, err
	}

	var rawTime string
	if err := required(fields, "time", &rawTime); err != nil {
		return IncomingMessage{}, err
	}
	t, err := ParseTime(rawTime)
	if err != nil {
		return IncomingMessage{}, decodeErr("time", err)
	}
	m.Time = t

	var code string
	if err := required(fields, "type", &code); err != nil {
		return IncomingMessage{}, err
	}
	typ, err := ParseType(code)
	if err != nil {
		return IncomingMessage{}, decodeErr("type", err)
	}
	m.Type = typ

	if err := required(fields, "sent_by_human", &m.SentByHuman); err != nil {
		return IncomingMessage{}, err
	}

	optional := []struct {
		name string
		dst  any
	}{
		{"options", &m.Options},
		{"local_id", &m.LocalID},
		{"text", &m.Text},
		{"sender_id", &m.SenderID},
		{"additional_metadata", &m.AdditionalMetadata},
		{"event", &m.Event},
		{"quoted_message_id", &m.QuotedMessageID},
	}
	for _, o := range optional {
		raw, ok := fields[o.name]
		if !ok || isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, o.dst); err != nil {
			return IncomingMessage{}, decodeErr(o.name, err)
		}
	}

	return m, nil
}

// required decodes fields[name] into dst, treating absence and JSON null
// alike as a missing field.
func required(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return decodeErr(name, errors.New("missing required field"))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return decodeErr(name, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// timeLayouts are the ISO-8601 forms the controller is known to emit.
// Fractional seconds are accepted by every layout when parsing.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp. Values without a zone offset are
// interpreted as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}

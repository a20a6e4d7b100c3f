// Package message defines the wire contract between a bot and BLAB Controller:
// the message type codes, the messages received from the controller, and the
// messages a bot sends back.
package message

import "fmt"

// Type is the kind of a message. Its value is the one-character code used on
// the wire.
type Type string

// Supported message types.
const (
	TypeSystem     Type = "S"
	TypeText       Type = "T"
	TypeVoice      Type = "V"
	TypeAudio      Type = "a"
	TypeVideo      Type = "v"
	TypeImage      Type = "i"
	TypeAttachment Type = "A"
)

var typeNames = map[Type]string{
	TypeSystem:     "SYSTEM",
	TypeText:       "TEXT",
	TypeVoice:      "VOICE",
	TypeAudio:      "AUDIO",
	TypeVideo:      "VIDEO",
	TypeImage:      "IMAGE",
	TypeAttachment: "ATTACHMENT",
}

// ParseType converts a wire code into a Type.
func ParseType(code string) (Type, error) {
	t := Type(code)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, code)
	}
	return t, nil
}

// Valid reports whether t is one of the known message types.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Name returns the symbolic name of the type (e.g. "TEXT").
func (t Type) Name() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// String implements fmt.Stringer.
func (t Type) String() string {
	return t.Name()
}

// HasAttachment reports whether messages of this type carry an external file.
// Only these types may send external_file_url on the wire.
func (t Type) HasAttachment() bool {
	switch t {
	case TypeImage, TypeVideo, TypeAudio, TypeAttachment:
		return true
	default:
		return false
	}
}

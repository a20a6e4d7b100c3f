package message

import "encoding/json"

// OutgoingMessage is a message the bot sends to BLAB Controller.
//
// LocalID must be unique per message; the controller uses it to discard
// repeated deliveries and echoes it back once the message is delivered.
type OutgoingMessage struct {
	LocalID         string
	Type            Type
	Text            string
	QuotedMessageID string
	// Command is an opaque payload interpreted by manager bots only.
	Command string
	Options []string
	// ExternalFileURL is sent only for attachment-bearing types.
	ExternalFileURL string
}

// outgoingWire is the sparse wire form. Text is always present.
type outgoingWire struct {
	LocalID         string   `json:"local_id"`
	Type            Type     `json:"type"`
	Text            string   `json:"text"`
	Options         []string `json:"options,omitempty"`
	QuotedMessageID string   `json:"quoted_message_id,omitempty"`
	Command         string   `json:"command,omitempty"`
	ExternalFileURL string   `json:"external_file_url,omitempty"`
}

// MarshalJSON implements json.Marshaler with the controller's sparse encoding.
func (m OutgoingMessage) MarshalJSON() ([]byte, error) {
	w := outgoingWire{
		LocalID:         m.LocalID,
		Type:            m.Type,
		Text:            m.Text,
		Options:         m.Options,
		QuotedMessageID: m.QuotedMessageID,
		Command:         m.Command,
	}
	if m.Type.HasAttachment() {
		w.ExternalFileURL = m.ExternalFileURL
	}
	return json.Marshal(w)
}

// Validate checks the fields required by the controller.
func (m OutgoingMessage) Validate() error {
	if m.LocalID == "" {
		return ErrMissingLocalID
	}
	if !m.Type.Valid() {
		return ErrUnknownType
	}
	return nil
}

// Encode validates m and returns its wire form.
func Encode(m OutgoingMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// NewText builds a text message.
func NewText(localID, text string, options ...string) OutgoingMessage {
	return OutgoingMessage{
		LocalID: localID,
		Type:    TypeText,
		Text:    text,
		Options: options,
	}
}

// NewFile builds a message pointing at an external file. typ should be one of
// the attachment-bearing types; for any other type the URL is never sent.
func NewFile(localID string, typ Type, url, caption string) OutgoingMessage {
	return OutgoingMessage{
		LocalID:         localID,
		Type:            typ,
		Text:            caption,
		ExternalFileURL: url,
	}
}

package message

import (
	"encoding/json"
	"fmt"
)

// Command actions understood by the controller for manager bots.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Command is the decoded form of OutgoingMessage.Command.
type Command struct {
	Action    string         `json:"action"`
	MessageID string         `json:"message_id,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
}

// NewCommand builds a system message carrying cmd, quoting quotedMessageID.
func NewCommand(localID string, cmd Command, quotedMessageID string) (OutgoingMessage, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return OutgoingMessage{}, fmt.Errorf("message: encoding command: %w", err)
	}
	return OutgoingMessage{
		LocalID:         localID,
		Type:            TypeSystem,
		Command:         string(payload),
		QuotedMessageID: quotedMessageID,
	}, nil
}

// NewApproveCommand builds the command a manager bot sends to approve the
// message identified by messageID.
func NewApproveCommand(localID, messageID string) OutgoingMessage {
	// Marshalling a Command without Args cannot fail.
	m, _ := NewCommand(localID, Command{Action: ActionApprove, MessageID: messageID}, messageID)
	return m
}

// NewRejectCommand builds the command a manager bot sends to reject the
// message identified by messageID.
func NewRejectCommand(localID, messageID string) OutgoingMessage {
	m, _ := NewCommand(localID, Command{Action: ActionReject, MessageID: messageID}, messageID)
	return m
}

// ParseCommand decodes the command payload of m.
func ParseCommand(m OutgoingMessage) (Command, error) {
	var cmd Command
	if err := json.Unmarshal([]byte(m.Command), &cmd); err != nil {
		return Command{}, fmt.Errorf("message: decoding command: %w", err)
	}
	return cmd, nil
}

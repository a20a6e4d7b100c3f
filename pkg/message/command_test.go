package message

import (
	"encoding/json"
	"testing"
)

func TestNewApproveCommand(t *testing.T) {
	t.Parallel()

	m := NewApproveCommand("l1", "m7")

	if m.QuotedMessageID != "m7" {
		t.Errorf("QuotedMessageID = %q, want %q", m.QuotedMessageID, "m7")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(m.Command), &decoded); err != nil {
		t.Fatalf("command is not a JSON object: %v", err)
	}
	if decoded["action"] != "approve" {
		t.Errorf("action = %v, want approve", decoded["action"])
	}

	cmd, err := ParseCommand(m)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.MessageID != "m7" {
		t.Errorf("MessageID = %q, want m7", cmd.MessageID)
	}
	if _, err := Encode(m); err != nil {
		t.Errorf("Encode approve command: %v", err)
	}
}

func TestNewRejectCommand(t *testing.T) {
	t.Parallel()

	cmd, err := ParseCommand(NewRejectCommand("l2", "m8"))
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Action != ActionReject || cmd.MessageID != "m8" {
		t.Errorf("command = %+v", cmd)
	}
}

func TestNewCommand_Args(t *testing.T) {
	t.Parallel()

	m, err := NewCommand("l3", Command{Action: "redirect", Args: map[string]any{"to": "p2"}}, "")
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}
	if m.Type != TypeSystem {
		t.Errorf("Type = %v, want SYSTEM", m.Type)
	}
	cmd, err := ParseCommand(m)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Args["to"] != "p2" {
		t.Errorf("Args = %v", cmd.Args)
	}
}

func TestParseCommand_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := ParseCommand(OutgoingMessage{Command: "not json"}); err == nil {
		t.Error("expected error for invalid command payload")
	}
}

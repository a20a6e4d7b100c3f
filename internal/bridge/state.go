package bridge

// State is the lifecycle state of a bridge connection.
type State string

// Bridge states. Transitions only move forward; StateClosed is terminal.
const (
	StateConnecting State = "CONNECTING"
	StateOpen       State = "OPEN"
	StateClosing    State = "CLOSING"
	StateClosed     State = "CLOSED"
)

func (s State) rank() int {
	switch s {
	case StateConnecting:
		return 0
	case StateOpen:
		return 1
	case StateClosing:
		return 2
	case StateClosed:
		return 3
	default:
		return -1
	}
}

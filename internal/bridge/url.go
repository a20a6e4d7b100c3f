package bridge

import (
	"fmt"
	"net/url"
	"strings"
)

// ChatURL builds the per-conversation endpoint `<base>/ws/chat/<id>/`.
func ChatURL(base, conversationID string) (string, error) {
	if conversationID == "" {
		return "", fmt.Errorf("%w: empty conversation id", ErrInvalidURL)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, base)
	}
	return strings.TrimRight(base, "/") + "/ws/chat/" + url.PathEscape(conversationID) + "/", nil
}

// SessionCookie renders the controller credential as a Cookie header value.
func SessionCookie(session string) string {
	return "sessionid=" + session
}

package security

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newRedactingLogger(buf *bytes.Buffer, r *Redactor) *slog.Logger {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewRedactingHandler(inner, r))
}

func TestRedactingHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		log  func(*slog.Logger)
	}{
		{"message", func(l *slog.Logger) { l.Info("cookie sessionid=s3cret sent") }},
		{"attribute", func(l *slog.Logger) { l.Info("dial", "credential", "s3cret") }},
		{"with attrs", func(l *slog.Logger) { l.With("session", "s3cret").Info("dial") }},
		{"group", func(l *slog.Logger) { l.Info("dial", slog.Group("req", "session", "s3cret")) }},
		{"with group", func(l *slog.Logger) { l.WithGroup("req").Info("dial", "session", "s3cret") }},
		{"error value", func(l *slog.Logger) { l.Error("dial", "error", errors.New("bad cookie s3cret")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := NewRedactor()
			r.AddLiteral("s3cret")
			tt.log(newRedactingLogger(&buf, r))

			out := buf.String()
			if strings.Contains(out, "s3cret") {
				t.Errorf("secret leaked: %s", out)
			}
			if !strings.Contains(out, RedactPlaceholder) {
				t.Errorf("placeholder missing: %s", out)
			}
		})
	}
}

func TestRedactingHandler_KeepsSafeValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newRedactingLogger(&buf, NewRedactor()).Info("opened", "conversation_id", "c1", "count", 3)

	out := buf.String()
	if !strings.Contains(out, "conversation_id=c1") || !strings.Contains(out, "count=3") {
		t.Errorf("safe attributes altered: %s", out)
	}
}

func TestRedactingHandler_Enabled(t *testing.T) {
	t.Parallel()

	inner := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := NewRedactingHandler(inner, NewRedactor())
	if h.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(t.Context(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

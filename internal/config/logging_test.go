package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggingConfig_Handler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(LoggingConfig{Level: "warn", Format: "json"}.Handler(&buf))

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("output is not JSON: %q", line)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Errorf("record = %v", rec)
	}
}

func TestLoggingConfig_HandlerFallback(t *testing.T) {
	t.Parallel()

	h := LoggingConfig{Level: "bogus", Format: "bogus"}.Handler(&bytes.Buffer{})
	if _, ok := h.(*slog.TextHandler); !ok {
		t.Errorf("handler = %T, want *slog.TextHandler", h)
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) || h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("fallback level should be info")
	}
}

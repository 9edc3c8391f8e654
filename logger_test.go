package fx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected a non-nil default logger")
	}
	if l.Enabled(nil, slog.LevelError) { //nolint:staticcheck // nil context is fine for Enabled
		t.Error("expected the default logger to discard everything")
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Debug("fx: test message", "key", "value")
	if !strings.Contains(buf.String(), "test message") {
		t.Error("expected the configured logger to receive records")
	}

	// nil restores the silent default.
	SetLogger(nil)
	buf.Reset()
	Logger().Error("fx: dropped")
	if buf.Len() != 0 {
		t.Error("expected no output after restoring the default")
	}
}

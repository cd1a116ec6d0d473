package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithAttrsOverridesByKey(t *testing.T) {
	ctx := WithAttrs(context.Background(), slog.String("component", "a"), slog.String("user_id", "u1"))
	ctx = WithAttrs(ctx, slog.String("component", "b"))

	attrs := Attrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("Attrs() len = %d, want 2", len(attrs))
	}
	if attrs[0].Value.String() != "b" {
		t.Fatalf("component = %q, want b", attrs[0].Value.String())
	}
}

func TestNewJSONLoggerWritesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "json")

	ctx := WithLogger(context.Background(), logger)
	ctx = WithAttrs(ctx, slog.String("component", "usecase.follow"))
	Debug(ctx, "follow created", slog.String("follow_id", "f1"))

	out := buf.String()
	if !strings.Contains(out, `"component":"usecase.follow"`) || !strings.Contains(out, `"follow_id":"f1"`) {
		t.Fatalf("log output = %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("WARN") != slog.LevelWarn {
		t.Fatalf("ParseLevel(WARN) mismatch")
	}
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("ParseLevel(bogus) should default to info")
	}
}

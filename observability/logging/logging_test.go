package logging

import (
	"log/slog"
	"testing"
)

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := resolveLevel(tc.raw); got != tc.want {
			t.Fatalf("resolveLevel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestRenameCoreAttrs(t *testing.T) {
	renamed := renameCoreAttrs(nil, slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(slog.LevelWarn)})
	if renamed.Key != "severity" || renamed.Value.String() != "WARN" {
		t.Fatalf("unexpected level attr: %v", renamed)
	}
	ts := renameCoreAttrs(nil, slog.Attr{Key: slog.TimeKey, Value: slog.StringValue("now")})
	if ts.Key != "timestamp" {
		t.Fatalf("unexpected time attr key: %s", ts.Key)
	}
	msg := renameCoreAttrs(nil, slog.Attr{Key: slog.MessageKey, Value: slog.StringValue("hello")})
	if msg.Key != "message" {
		t.Fatalf("unexpected message attr key: %s", msg.Key)
	}
	other := renameCoreAttrs(nil, slog.String("jobId", "7"))
	if other.Key != "jobId" {
		t.Fatalf("custom attrs must pass through, got %s", other.Key)
	}
}

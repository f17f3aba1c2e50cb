package logger_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/eisenboard/eisenboard-api/internal/config"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		got, ok := logger.ParseLevel(tc.name)
		if got != tc.want || ok != tc.valid {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tc.name, got, ok, tc.want, tc.valid)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()

	buf := &logger.TestLogBuffer{}
	log := logger.New(buf, "warn")

	log.Info("hidden")
	log.Warn("shown", slog.String("component", "test"))

	entries, err := buf.GetLogEntries()
	if err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %s", len(entries), buf.String())
	}
	if entries[0]["msg"] != "shown" || entries[0]["component"] != "test" {
		t.Errorf("unexpected entry: %v", entries[0])
	}
	if entries[0]["level"] != "WARN" {
		t.Errorf("expected WARN level, got %v", entries[0]["level"])
	}
}

func TestSetupReturnsDefaultLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	log, err := logger.Setup(config.ServerConfig{LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if log == nil {
		t.Fatal("Setup returned nil logger")
	}
	if slog.Default() != log {
		t.Error("Setup should install the logger as the slog default")
	}
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	buf := &logger.TestLogBuffer{}
	log := logger.New(buf, "debug").With(slog.String("trace_id", "abc"))

	ctx := logger.WithLogger(context.Background(), log)
	logger.FromContext(ctx).Info("from context")

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["trace_id"] != "abc" {
		t.Errorf("expected trace_id attribute, got %v", entry)
	}
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewJSONHandler(&logger.TestLogBuffer{}, nil))

	//nolint:staticcheck // a nil context must not panic
	if got := logger.FromContextOrDefault(nil, fallback); got != fallback {
		t.Error("nil context should return the fallback")
	}
	if got := logger.FromContextOrDefault(context.Background(), fallback); got != fallback {
		t.Error("empty context should return the fallback")
	}
	if got := logger.FromContextOrDefault(context.Background(), nil); got == nil {
		t.Error("nil fallback should resolve to slog.Default()")
	}
}

func TestSetupTestLoggerCapturesDefault(t *testing.T) {
	buf, _ := logger.SetupTestLogger(t)

	slog.Info("captured", "key", "value")

	logger.AssertLogContains(t, buf, "captured")
	logger.AssertLogNotContains(t, buf, "missing")
}

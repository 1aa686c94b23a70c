package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", "text", &buf)

	logger.Info("echo sent", KeySequence, 3)

	output := buf.String()
	if !strings.Contains(output, "echo sent") {
		t.Errorf("expected output to contain 'echo sent', got: %s", output)
	}
	if !strings.Contains(output, "seq=3") {
		t.Errorf("expected output to contain 'seq=3', got: %s", output)
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", "JSON", &buf)

	logger.Info("echo sent", KeyTarget, "192.0.2.1")

	output := buf.String()
	if !strings.Contains(output, `"msg":"echo sent"`) {
		t.Errorf("expected JSON output with msg field, got: %s", output)
	}
	if !strings.Contains(output, `"target":"192.0.2.1"`) {
		t.Errorf("expected JSON output with target field, got: %s", output)
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		configLevel  string
		logLevel     slog.Level
		shouldAppear bool
	}{
		{"debug at debug level", "debug", slog.LevelDebug, true},
		{"debug at info level", "info", slog.LevelDebug, false},
		{"info at info level", "info", slog.LevelInfo, true},
		{"info at warn level", "warn", slog.LevelInfo, false},
		{"warn at error level", "error", slog.LevelWarn, false},
		{"error at error level", "error", slog.LevelError, true},
		{"debug at unknown level", "verbose", slog.LevelDebug, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(tc.configLevel, "text", &buf)

			logger.Log(context.Background(), tc.logLevel, "test message")

			if hasOutput := buf.Len() > 0; hasOutput != tc.shouldAppear {
				t.Errorf("level %s at config %s: shouldAppear=%v, got output=%v",
					tc.logLevel, tc.configLevel, tc.shouldAppear, hasOutput)
			}
		})
	}
}

func TestNewWithWriter_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("debug", "text", &buf).Debug("packet skipped")

	if !strings.Contains(buf.String(), "source=") {
		t.Errorf("expected source attribute at debug level, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseLevel(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "TEXT"} {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false, want true", f)
		}
	}
	if ValidFormat("yaml") {
		t.Error("ValidFormat(yaml) = true, want false")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger == nil {
		t.Fatal("Nop returned nil")
	}

	// Should not panic
	logger.Info("discarded")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Component(NewWithWriter("info", "text", &buf), "session").Info("started")

	if !strings.Contains(buf.String(), "component=session") {
		t.Errorf("expected component attribute, got: %s", buf.String())
	}
}

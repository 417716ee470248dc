package telemetry

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLogger_DoesNotPanicForAllCombinations(t *testing.T) {
	formats := []string{"json", "text", "JSON", "TEXT", "", "unknown"}
	levels := []string{"debug", "info", "warn", "warning", "error", "ERROR", "", "unknown"}

	for _, format := range formats {
		for _, level := range levels {
			t.Run(format+"/"+level, func(t *testing.T) {
				defer func() {
					if r := recover(); r != nil {
						t.Errorf("SetupLogger(%q, %q) panicked: %v", format, level, r)
					}
				}()
				SetupLogger(format, level)
			})
		}
	}
	// Restore a sensible default so other tests in this binary are unaffected.
	SetupLogger("text", "error")
}

func TestSetupLogger_InstallsDefault(t *testing.T) {
	SetupLogger("json", "debug")
	if !slog.Default().Enabled(nil, slog.LevelDebug) {
		t.Error("debug level was configured but default logger does not enable it")
	}

	SetupLogger("text", "error")
	if slog.Default().Enabled(nil, slog.LevelInfo) {
		t.Error("error level was configured but default logger still enables info")
	}
}

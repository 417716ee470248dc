package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// parseLevel maps a configuration string to a slog level, defaulting to Info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger configures the global slog default logger from the logging
// section of the application configuration.
//
// format: "json" → JSONHandler (machine readable; recommended for production),
// anything else → TextHandler (human readable; suitable for local development).
// level: "debug", "info", "warn", "error" (case-insensitive); defaults to "info".
//
// The configured logger is installed as the default so slog.Info/Warn/Error
// calls elsewhere in the application automatically use it without carrying a
// *slog.Logger through every constructor.
func SetupLogger(format, level string) {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug, // include file:line only when debugging
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialised", "format", format, "level", lvl.String())
}

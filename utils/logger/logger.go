package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs the process-wide JSON logger. When otelEnabled is true,
// records are additionally exported through the OTel log bridge.
func Init(level string, otelEnabled bool) *slog.Logger {
	parsed := parseLevel(level)

	var handler slog.Handler
	if otelEnabled {
		handler = NewMultiHandler(parsed)
	} else {
		jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parsed,
		})
		// Trace IDs still go to stdout logs even when OTel export is off
		handler = NewTraceContextHandler(jsonHandler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	GlobalContext = NewContextLogger(logger)

	return logger
}

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

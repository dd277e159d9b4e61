package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
// Development runs also log at DEBUG.
func Setup(appEnv string) {
	slog.SetDefault(slog.New(StdoutHandler(appEnv)))
}

func StdoutHandler(appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}

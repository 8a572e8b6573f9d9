package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hpn/promptpal/internal/config"
	"github.com/hpn/promptpal/internal/security"
)

// setupLogger creates a structured logger based on config.
// Logs go to fallback unless an output path is configured, so command output stays clean.
func setupLogger(cfg config.LoggingConfig, fallback io.Writer) (*slog.Logger, func() error, error) {
	out := fallback
	closeFn := func() error { return nil }

	if cfg.OutputPath != "" {
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(security.NewRedactedHandler(handler))

	// Set as default logger
	slog.SetDefault(logger)

	return logger, closeFn, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package logger configures structured logging for docketscan.
// Debug records are only emitted when verbose mode is enabled.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a text handler writing to w as the default slog logger
// and returns it. A nil writer logs to stderr.
func Setup(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

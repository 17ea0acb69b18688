// Package cli provides CLI commands for the crudmaker application.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
)

// ConfigureLogging installs the diagnostic logger for the current CLI
// invocation. Should be called once at CLI startup in PersistentPreRun.
func ConfigureLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// NewContext creates a context cancelled on interrupt, so a run stops
// between steps instead of mid-write.
// CLI commands should use this instead of context.Background() directly.
func NewContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

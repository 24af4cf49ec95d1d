// Package logging wraps log/slog to give every component of the
// engine structured, consistently-leveled output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/latticedb/lattice/config"
)

var (
	defaultLogger *slog.Logger
	mu            sync.RWMutex
)

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Init configures the package-level default logger from cfg. Call once
// at startup, before any component calls GetLogger.
func Init(cfg *config.Config) {
	mu.Lock()
	defer mu.Unlock()

	level := parseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}

	var out io.Writer = os.Stderr
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	defaultLogger = slog.New(handler)
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

// GetLogger returns a logger tagged with the calling component's name,
// e.g. "engine", "storage", "exec".
func GetLogger(component string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger.With("component", component)
}

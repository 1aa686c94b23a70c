// Package logging provides structured logging for muti-ping.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger writing to stderr.
// Supported levels: debug, info, warn, error. Supported formats: text, json.
func New(level, format string) *slog.Logger {
	return NewWithWriter(level, format, os.Stderr)
}

// NewWithWriter creates a logger writing to w. Unknown levels fall back to info.
func NewWithWriter(level, format string, w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
		// Source locations only help when chasing a single packet at debug level.
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a level name to slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// ValidFormat reports whether format names a supported handler.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "text", "json":
		return true
	default:
		return false
	}
}

// Nop returns a logger that discards all output.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Component returns l tagged with a component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With(KeyComponent, name)
}

// Attribute keys shared across packages.
const (
	KeyComponent  = "component"
	KeyTarget     = "target"
	KeyHost       = "host"
	KeyAddress    = "address"
	KeyIdentifier = "identifier"
	KeySequence   = "seq"
	KeyType       = "type"
	KeyTTL        = "ttl"
	KeyRTT        = "rtt"
	KeyBytes      = "bytes"
	KeyError      = "error"
)

// Package log provides the leveled console logger used across git-pr-release.
// Messages carry structured key/value pairs and are written to stderr so that
// machine-readable output (--json, dry-run dumps) stays clean on stdout.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level controls logger verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu       sync.Mutex
	level    = LevelInfo
	out      = os.Stderr
	debugHdr = color.New(color.FgHiBlack)
	infoHdr  = color.New(color.FgHiCyan)
	warnHdr  = color.New(color.FgHiYellow)
	errorHdr = color.New(color.FgHiRed)
)

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// ParseLevel converts a level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Debug logs a debug message with optional key/value pairs.
func Debug(msg string, keyvals ...interface{}) {
	emit(LevelDebug, debugHdr, "debug", msg, keyvals...)
}

// Info logs an informational message with optional key/value pairs.
func Info(msg string, keyvals ...interface{}) {
	emit(LevelInfo, infoHdr, "info", msg, keyvals...)
}

// Warn logs a warning with optional key/value pairs.
func Warn(msg string, keyvals ...interface{}) {
	emit(LevelWarn, warnHdr, "warn", msg, keyvals...)
}

// Error logs an error with optional key/value pairs.
func Error(msg string, keyvals ...interface{}) {
	emit(LevelError, errorHdr, "error", msg, keyvals...)
}

func emit(l Level, hdr *color.Color, tag, msg string, keyvals ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}

	hdr.Fprintf(out, "  • [%s] ", tag)
	fmt.Fprint(out, msg)
	fmt.Fprint(out, formatKeyvals(keyvals))
	fmt.Fprintln(out)
}

// formatKeyvals renders key/value pairs as " k=v k=v". An odd trailing key is
// rendered with a missing-value marker rather than dropped.
func formatKeyvals(keyvals []interface{}) string {
	if len(keyvals) == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, " %v=(missing)", keyvals[i])
		}
	}
	return b.String()
}

package watch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ChangeType represents the type of file change.
type ChangeType string

const (
	ChangeAdded    ChangeType = "+"
	ChangeModified ChangeType = "~"
	ChangeDeleted  ChangeType = "-"
)

// Logger prints the watch session for humans or, with JSON, one event object
// per line for tooling.
type Logger struct {
	writer  io.Writer
	isTTY   bool
	verbose bool
	noColor bool
	jsonOut bool

	mu    sync.Mutex
	stats WatchStats
}

// WatchStats tracks statistics for the watch session.
type WatchStats struct {
	SyncCount  int
	ErrorCount int
	StartTime  time.Time
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
	JSON    bool
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	isTTY := false
	if f, ok := writer.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	return &Logger{
		writer:  writer,
		isTTY:   isTTY,
		verbose: cfg.Verbose,
		noColor: cfg.NoColor,
		jsonOut: cfg.JSON,
		stats: WatchStats{
			StartTime: time.Now(),
		},
	}
}

// Ready logs the initial ready message.
func (l *Logger) Ready(fileCount int, groups []string, path string) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":  "ready",
			"files":  fileCount,
			"groups": groups,
			"path":   path,
		})
		return
	}

	l.printf("srcsync: watching %d files in %s\n", fileCount, path)
	if len(groups) > 0 {
		l.printf("srcsync: groups: %s\n", strings.Join(groups, ", "))
	}
	l.println("srcsync: ready")
	l.println()
}

// FileChanged logs a file change event. Human output shows it only when
// verbose.
func (l *Logger) FileChanged(path string, change ChangeType) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":  "file_changed",
			"path":   path,
			"change": string(change),
			"time":   now(),
		})
		return
	}

	if l.verbose {
		l.printf("[%s] %s %s\n", l.timestamp(), l.colorize(string(change), change), path)
	}
}

// Syncing logs that a sync of groups is starting.
func (l *Logger) Syncing(groups []string) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":  "syncing",
			"groups": groups,
			"time":   now(),
		})
		return
	}

	l.printf("[%s] syncing %s...\n", l.timestamp(), strings.Join(groups, ", "))
}

// Synced logs a group that synced, with the files it wrote.
func (l *Logger) Synced(group string, outputs []string) {
	l.mu.Lock()
	l.stats.SyncCount++
	l.mu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":   "synced",
			"group":   group,
			"outputs": outputs,
			"time":    now(),
		})
		return
	}

	checkmark := l.colorize("✓", ChangeAdded)
	l.printf("[%s] %s %s synced (%d files)\n", l.timestamp(), checkmark, group, len(outputs))
	if l.verbose {
		for _, o := range outputs {
			l.printf("           %s\n", o)
		}
	}
}

// GroupFailed logs a group whose sync failed.
func (l *Logger) GroupFailed(group string, err error) {
	l.mu.Lock()
	l.stats.ErrorCount++
	l.mu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "failed",
			"group": group,
			"error": err.Error(),
			"time":  now(),
		})
		return
	}

	xmark := l.colorize("✗", ChangeDeleted)
	l.printf("[%s] %s %s failed: %v\n", l.timestamp(), xmark, group, err)
}

// Error logs an error not tied to a group.
func (l *Logger) Error(err error) {
	l.mu.Lock()
	l.stats.ErrorCount++
	l.mu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "error",
			"error": err.Error(),
			"time":  now(),
		})
		return
	}

	xmark := l.colorize("✗", ChangeDeleted)
	l.printf("[%s] %s error: %v\n", l.timestamp(), xmark, err)
}

// Shutdown logs the shutdown message with statistics.
func (l *Logger) Shutdown() {
	stats := l.Stats()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":    "shutdown",
			"syncs":    stats.SyncCount,
			"errors":   stats.ErrorCount,
			"duration": time.Since(stats.StartTime).String(),
		})
		return
	}

	l.println()
	l.printf("srcsync: shutting down (%d syncs, %d errors)\n",
		stats.SyncCount, stats.ErrorCount)
}

// Stats returns the current watch statistics.
func (l *Logger) Stats() WatchStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func now() string {
	return time.Now().Format(time.RFC3339)
}

// timestamp returns the current time formatted as HH:MM:SS.
func (l *Logger) timestamp() string {
	return time.Now().Format("15:04:05")
}

// colorize applies ANSI color codes based on change type.
func (l *Logger) colorize(s string, change ChangeType) string {
	if l.noColor || !l.isTTY {
		return s
	}

	var color string
	switch change {
	case ChangeAdded:
		color = "\033[32m" // green
	case ChangeModified:
		color = "\033[33m" // yellow
	case ChangeDeleted:
		color = "\033[31m" // red
	default:
		return s
	}
	return color + s + "\033[0m"
}

func (l *Logger) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		l.println(`{"event":"internal_error","error":"json marshal failed"}`)
		return
	}
	l.println(string(data))
}

// printf and println ignore write errors; the output is informational.
func (l *Logger) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(l.writer, format, args...)
}

func (l *Logger) println(args ...any) {
	_, _ = fmt.Fprintln(l.writer, args...)
}

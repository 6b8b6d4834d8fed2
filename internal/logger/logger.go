// Package logger is the process-wide structured logger.
//
// It wraps log/slog with a colored text handler for terminals and a JSON
// handler for machines. Call sites log key/value pairs using the Key*
// constants from fields.go; the *Ctx variants prepend the fields of the
// mount-scoped LogContext found in the context.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents log levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	level  atomic.Int32
	format atomic.Value // "text" or "json"

	mu       sync.RWMutex
	output   io.Writer = os.Stdout
	closer   io.Closer
	useColor bool
	slogger  *slog.Logger
)

func init() {
	level.Store(int32(LevelInfo))
	format.Store("text")
	useColor = isTerminal(os.Stdout.Fd())
	rebuild()
}

// rebuild replaces the slog logger after a level, format or output change.
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: Level(level.Load()).slog()}

	var h slog.Handler
	if f, _ := format.Load().(string); f == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// Init configures the logger. Output can be "stdout", "stderr" or a file
// path, opened in append mode.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, c, color, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}

		mu.Lock()
		if closer != nil {
			_ = closer.Close()
		}
		output, closer, useColor = w, c, color
		mu.Unlock()
	}

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	rebuild()
	return nil
}

func openOutput(target string) (io.Writer, io.Closer, bool, error) {
	switch strings.ToLower(target) {
	case "stdout":
		return os.Stdout, nil, isTerminal(os.Stdout.Fd()), nil
	case "stderr":
		return os.Stderr, nil, isTerminal(os.Stderr.Fd()), nil
	default:
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, false, fmt.Errorf("failed to open log file %q: %w", target, err)
		}
		return f, f, false, nil
	}
}

// InitWithWriter directs output to w. Used by tests and the CLI.
func InitWithWriter(w io.Writer, lvl, fmtName string, enableColor bool) {
	mu.Lock()
	output = w
	useColor = enableColor
	mu.Unlock()

	if lvl != "" {
		SetLevel(lvl)
	}
	if fmtName != "" {
		SetFormat(fmtName)
	}
	rebuild()
}

// SetLevel sets the minimum log level. Unknown names are ignored.
func SetLevel(name string) {
	l, ok := ParseLevel(name)
	if !ok {
		return
	}
	level.Store(int32(l))
	rebuild()
}

// SetFormat sets the output format (text or json). Unknown names are ignored.
func SetFormat(name string) {
	name = strings.ToLower(name)
	if name != "text" && name != "json" {
		return
	}
	format.Store(name)
	rebuild()
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	return Level(level.Load())
}

func enabled(l Level) bool {
	return l >= Level(level.Load())
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// ============================================================================
// Structured Logging API
// ============================================================================

// Debug logs at debug level: Debug("message", "key1", value1, ...)
func Debug(msg string, args ...any) {
	if enabled(LevelDebug) {
		get().Debug(msg, args...)
	}
}

// Info logs at info level.
func Info(msg string, args ...any) {
	if enabled(LevelInfo) {
		get().Info(msg, args...)
	}
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	if enabled(LevelWarn) {
		get().Warn(msg, args...)
	}
}

// Error logs at error level. Errors are never filtered.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// ============================================================================
// Context-aware Logging API
// ============================================================================

// DebugCtx logs at debug level with the LogContext fields of ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if enabled(LevelDebug) {
		get().Debug(msg, withContextFields(ctx, args)...)
	}
}

// InfoCtx logs at info level with the LogContext fields of ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	if enabled(LevelInfo) {
		get().Info(msg, withContextFields(ctx, args)...)
	}
}

// WarnCtx logs at warn level with the LogContext fields of ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	if enabled(LevelWarn) {
		get().Warn(msg, withContextFields(ctx, args)...)
	}
}

// ErrorCtx logs at error level with the LogContext fields of ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	get().Error(msg, withContextFields(ctx, args)...)
}

// withContextFields prepends the LogContext fields so they come first.
func withContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := make([]any, 0, 12+len(args))
	add := func(key, value string) {
		if value != "" {
			fields = append(fields, key, value)
		}
	}
	add(KeyTraceID, lc.TraceID)
	add(KeySpanID, lc.SpanID)
	add(KeyMountID, lc.MountID)
	add(KeyVID, lc.VID)
	add(KeyDrive, lc.Drive)
	add(KeyAlgorithm, lc.Algorithm)

	return append(fields, args...)
}

// With returns a slog.Logger with pre-bound attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}

// Duration returns the time elapsed since start in milliseconds.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

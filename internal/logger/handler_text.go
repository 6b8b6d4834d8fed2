package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ColorTextHandler writes one line per record:
//
//	[2006-01-02 15:04:05] [INFO] message key=value key=value
//
// Keys are cyan and levels colored when useColor is set.
type ColorTextHandler struct {
	opts     slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	prefix   string // group prefix, "a.b."
	attrs    []byte // pre-formatted attrs from WithAttrs
	useColor bool
}

// NewColorTextHandler creates a ColorTextHandler writing to w.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	h := &ColorTextHandler{w: w, mu: &sync.Mutex{}, useColor: useColor}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

// Handle formats and writes a record.
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = fmt.Appendf(buf, "[%s] [%s] %s", r.Time.Format("2006-01-02 15:04:05"), h.level(r.Level), r.Message)
	buf = append(buf, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *ColorTextHandler) level(l slog.Level) string {
	var name, color string
	switch {
	case l < slog.LevelInfo:
		name, color = "DEBUG", colorGray
	case l < slog.LevelWarn:
		name, color = "INFO", colorGreen
	case l < slog.LevelError:
		name, color = "WARN", colorYellow
	default:
		name, color = "ERROR", colorRed
	}
	if !h.useColor {
		return name
	}
	return color + name + colorReset
}

func (h *ColorTextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		nested := prefix
		if a.Key != "" {
			nested = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, nested, ga)
		}
		return buf
	}

	key := prefix + a.Key
	if h.useColor {
		key = colorCyan + key + colorReset
	}
	buf = append(buf, ' ')
	buf = append(buf, key...)
	buf = append(buf, '=')
	return append(buf, formatValue(a.Value)...)
}

// formatValue renders a resolved value for text output. Strings with
// spaces are quoted.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v.Any())
	}
}

// WithAttrs returns a handler that writes attrs on every record.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = h.appendAttr(clone.attrs, h.prefix, a)
	}
	return &clone
}

// WithGroup returns a handler that prefixes subsequent keys with name.
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

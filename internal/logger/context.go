package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds the fields shared by every log line of one tape mount.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	MountID   string    // Unique id of the mount session
	VID       string    // Volume id of the mounted tape
	Drive     string    // Drive name
	Algorithm string    // Resolved RAO algorithm, empty until resolution
	StartTime time.Time // Mount start, for duration calculation
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext of ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext starts the log context of a new mount of vid on drive.
func NewLogContext(vid, drive string) *LogContext {
	return &LogContext{
		MountID:   uuid.NewString(),
		VID:       vid,
		Drive:     drive,
		StartTime: time.Now(),
	}
}

// Clone returns a copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithAlgorithm returns a copy with the algorithm set.
func (lc *LogContext) WithAlgorithm(algorithm string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Algorithm = algorithm
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the time since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}

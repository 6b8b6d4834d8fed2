package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Tape attributes use the "tape." prefix, ordering
// attributes the "rao." prefix.
const (
	AttrVID       = "tape.vid"
	AttrDrive     = "tape.drive"
	AttrMediaType = "tape.media_type"
	AttrMountID   = "tape.mount_id"

	AttrAlgorithm  = "rao.algorithm"
	AttrConfigured = "rao.configured"
	AttrFiles      = "rao.files"
	AttrMaxFiles   = "rao.max_files"
	AttrNative     = "rao.native"
	AttrWraps      = "rao.wraps"

	AttrStoreType = "catalogue.type"
)

// Span names, formatted <component>.<operation>.
const (
	SpanRAOQuery       = "rao.query"
	SpanRAOResolve     = "rao.resolve"
	SpanDriveProbe     = "drive.probe"
	SpanDriveCalibrate = "drive.end_of_wrap_positions"
	SpanCatalogueMedia = "catalogue.media_geometry"
)

// Event names.
const (
	EventAlgorithmFallback = "rao.algorithm_fallback"
)

// VID returns a tape volume id attribute.
func VID(vid string) attribute.KeyValue {
	return attribute.String(AttrVID, vid)
}

// Algorithm returns an RAO algorithm attribute.
func Algorithm(name string) attribute.KeyValue {
	return attribute.String(AttrAlgorithm, name)
}

// Files returns a batch size attribute.
func Files(n int) attribute.KeyValue {
	return attribute.Int(AttrFiles, n)
}

// MaxFiles returns a native query limit attribute.
func MaxFiles(n int) attribute.KeyValue {
	return attribute.Int(AttrMaxFiles, n)
}

// Native returns a native capability attribute.
func Native(supported bool) attribute.KeyValue {
	return attribute.Bool(AttrNative, supported)
}

// Wraps returns a calibration table size attribute.
func Wraps(n int) attribute.KeyValue {
	return attribute.Int(AttrWraps, n)
}

// StoreType returns a catalogue backend attribute.
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// StartRAOSpan starts the span of one RAO query on vid.
func StartRAOSpan(ctx context.Context, vid string, files int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{VID(vid), Files(files)}, attrs...)
	return StartSpan(ctx, SpanRAOQuery, trace.WithAttributes(all...))
}

// StartResolveSpan starts the span of the once-per-mount algorithm
// resolution.
func StartResolveSpan(ctx context.Context, vid string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{VID(vid)}, attrs...)
	return StartSpan(ctx, SpanRAOResolve, trace.WithAttributes(all...))
}

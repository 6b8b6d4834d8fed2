package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these consistently so
// log aggregation can query them.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// ========================================================================
	// Mount
	// ========================================================================
	KeyMountID   = "mount_id"   // Mount session id
	KeyVID       = "vid"        // Tape volume id
	KeyDrive     = "drive"      // Drive name
	KeyMediaType = "media_type" // Catalogue media type name

	// ========================================================================
	// RAO
	// ========================================================================
	KeyAlgorithm    = "algorithm"     // linear, random, sltf, native
	KeyConfigured   = "configured"    // Algorithm name as configured
	KeyFiles        = "files"         // Number of files in a batch
	KeyFSeqs        = "fseqs"         // Tape file sequence numbers in recall order
	KeyFSeq         = "fseq"          // Single tape file sequence number
	KeyBlockID      = "block_id"      // Logical object id
	KeyMaxFiles     = "max_files"     // Native query file limit
	KeyWraps        = "wraps"         // Calibration table size
	KeyLastBoundary = "last_boundary" // Corrected last wrap boundary
	KeyTimings      = "timings"       // Stage timings
	KeyEstimator    = "estimator"     // File position estimator name
	KeyHeuristic    = "heuristic"     // Cost heuristic name

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyComponent  = "component"
	KeyStoreType  = "store_type"

	// ========================================================================
	// HTTP
	// ========================================================================
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyStatus    = "status"
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"
	KeyAddress   = "address"
)

// ============================================================================
// Attribute Constructors
// ============================================================================

// VID returns a tape volume id attribute.
func VID(vid string) slog.Attr {
	return slog.String(KeyVID, vid)
}

// Algorithm returns an RAO algorithm attribute.
func Algorithm(name string) slog.Attr {
	return slog.String(KeyAlgorithm, name)
}

// Files returns a batch size attribute.
func Files(n int) slog.Attr {
	return slog.Int(KeyFiles, n)
}

// FSeqs returns the recall order attribute.
func FSeqs(fseqs []uint64) slog.Attr {
	return slog.Any(KeyFSeqs, fseqs)
}

// DurationMs returns a duration attribute in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns an error attribute, empty for a nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// StoreType returns a catalogue backend attribute.
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

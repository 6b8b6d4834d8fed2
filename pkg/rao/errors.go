package rao

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of RAO error that occurred.
type ErrorCode int

const (
	// ErrConfiguration indicates a component could not be built from the
	// supplied configuration or media geometry. Fatal at construction time.
	ErrConfiguration ErrorCode = iota + 1

	// ErrGeometry indicates a block id or wrap lies outside the calibrated
	// tape. Fatal for the batch being processed.
	ErrGeometry

	// ErrAlgorithmName indicates an unrecognized configured algorithm name.
	// Never fatal: callers substitute the linear algorithm.
	ErrAlgorithmName

	// ErrNativeOrder indicates the drive returned an ordering that is not a
	// permutation of the files it was given.
	ErrNativeOrder
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrConfiguration:
		return "ConfigurationError"
	case ErrGeometry:
		return "GeometryError"
	case ErrAlgorithmName:
		return "AlgorithmNameError"
	case ErrNativeOrder:
		return "NativeOrderError"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// Error is an RAO error carrying an ErrorCode.
type Error struct {
	Code    ErrorCode
	Message string
	VID     string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.VID != "" {
		return fmt.Sprintf("%s: %s (vid: %s)", e.Code, e.Message, e.VID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithVID returns a copy of the error tagged with a volume id.
func (e *Error) WithVID(vid string) *Error {
	clone := *e
	clone.VID = vid
	return &clone
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewGeometryError creates a GeometryError.
func NewGeometryError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrGeometry,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewAlgorithmNameError creates an AlgorithmNameError for an unknown name.
func NewAlgorithmNameError(name string) *Error {
	return &Error{
		Code:    ErrAlgorithmName,
		Message: fmt.Sprintf("unknown RAO algorithm %q", name),
	}
}

// NewNativeOrderError creates a NativeOrderError.
func NewNativeOrderError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrNativeOrder,
		Message: fmt.Sprintf(format, args...),
	}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

// CodeOf returns the ErrorCode of err, or 0 if err is not an RAO error.
func CodeOf(err error) ErrorCode {
	var raoErr *Error
	if errors.As(err, &raoErr) {
		return raoErr.Code
	}
	return 0
}

// IsConfigurationError returns true if err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	return CodeOf(err) == ErrConfiguration
}

// IsGeometryError returns true if err is a GeometryError.
func IsGeometryError(err error) bool {
	return CodeOf(err) == ErrGeometry
}

// IsAlgorithmNameError returns true if err is an AlgorithmNameError.
func IsAlgorithmNameError(err error) bool {
	return CodeOf(err) == ErrAlgorithmName
}

// IsNativeOrderError returns true if err is a NativeOrderError.
func IsNativeOrderError(err error) bool {
	return CodeOf(err) == ErrNativeOrder
}

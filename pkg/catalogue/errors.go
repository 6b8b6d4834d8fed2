package catalogue

import "errors"

var (
	// Media type errors
	ErrMediaTypeNotFound  = errors.New("media type not found")
	ErrDuplicateMediaType = errors.New("media type already exists")
	ErrMediaTypeInUse     = errors.New("media type is referenced by tapes")

	// Tape errors
	ErrTapeNotFound  = errors.New("tape not found")
	ErrDuplicateTape = errors.New("tape already exists")

	// ErrInvalid wraps model validation failures.
	ErrInvalid = errors.New("invalid catalogue entry")

	// ErrClosed is returned by a closed store.
	ErrClosed = errors.New("catalogue is closed")
)

// IsNotFound reports whether err means a tape or media type is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTapeNotFound) || errors.Is(err, ErrMediaTypeNotFound)
}

// IsConflict reports whether err is a duplicate or in-use conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateMediaType) ||
		errors.Is(err, ErrDuplicateTape) ||
		errors.Is(err, ErrMediaTypeInUse)
}

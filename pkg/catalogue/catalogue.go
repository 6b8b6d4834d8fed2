// Package catalogue stores media types and tapes and answers the media
// geometry lookups RAO needs at mount time.
//
// Backends live in subpackages: memory, badger and gorm (sqlite and
// postgres). pkg/config selects one from configuration.
package catalogue

import (
	"context"
	"fmt"

	"github.com/marmos91/dittotape/pkg/rao"
)

// Type names a catalogue backend.
type Type string

const (
	TypeMemory   Type = "memory"
	TypeBadger   Type = "badger"
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
)

// Catalogue is the read side RAO depends on.
type Catalogue interface {
	// MediaGeometry returns the geometry of the media type of the tape vid.
	MediaGeometry(ctx context.Context, vid string) (*rao.MediaGeometry, error)
}

// MediaTypeStore manages media types.
type MediaTypeStore interface {
	CreateMediaType(ctx context.Context, mt *MediaType) error
	GetMediaType(ctx context.Context, name string) (*MediaType, error)
	ListMediaTypes(ctx context.Context) ([]*MediaType, error)

	// DeleteMediaType fails with ErrMediaTypeInUse while tapes reference it.
	DeleteMediaType(ctx context.Context, name string) error
}

// TapeStore manages tapes.
type TapeStore interface {
	// CreateTape fails with ErrMediaTypeNotFound for an unknown media type.
	CreateTape(ctx context.Context, tape *Tape) error
	GetTape(ctx context.Context, vid string) (*Tape, error)
	ListTapes(ctx context.Context) ([]*Tape, error)
	DeleteTape(ctx context.Context, vid string) error
}

// Store is a complete catalogue backend.
type Store interface {
	Catalogue
	MediaTypeStore
	TapeStore

	// Type returns the backend name.
	Type() Type

	// Healthcheck verifies the backend can serve requests.
	Healthcheck(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// lookup is the subset of Store ResolveGeometry needs.
type lookup interface {
	GetMediaType(ctx context.Context, name string) (*MediaType, error)
	GetTape(ctx context.Context, vid string) (*Tape, error)
}

// ResolveGeometry looks up the tape vid and returns its media type geometry.
// Backends implement MediaGeometry with it.
func ResolveGeometry(ctx context.Context, s lookup, vid string) (*rao.MediaGeometry, error) {
	tape, err := s.GetTape(ctx, vid)
	if err != nil {
		return nil, fmt.Errorf("tape %s: %w", vid, err)
	}
	mt, err := s.GetMediaType(ctx, tape.MediaType)
	if err != nil {
		return nil, fmt.Errorf("media type %s of tape %s: %w", tape.MediaType, vid, err)
	}
	return mt.Geometry(), nil
}

// Package memory is an in-process catalogue backend.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/rao"
)

// Store keeps media types and tapes in maps. Values are copied in and out.
type Store struct {
	mu         sync.RWMutex
	mediaTypes map[string]*catalogue.MediaType
	tapes      map[string]*catalogue.Tape
	closed     bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		mediaTypes: make(map[string]*catalogue.MediaType),
		tapes:      make(map[string]*catalogue.Tape),
	}
}

func (s *Store) Type() catalogue.Type {
	return catalogue.TypeMemory
}

func (s *Store) MediaGeometry(ctx context.Context, vid string) (*rao.MediaGeometry, error) {
	return catalogue.ResolveGeometry(ctx, s, vid)
}

// ============================================================================
// Media Types
// ============================================================================

func (s *Store) CreateMediaType(ctx context.Context, mt *catalogue.MediaType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mt.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return catalogue.ErrClosed
	}
	if _, ok := s.mediaTypes[mt.Name]; ok {
		return catalogue.ErrDuplicateMediaType
	}

	now := time.Now()
	mt.CreatedAt, mt.UpdatedAt = now, now
	s.mediaTypes[mt.Name] = mt.Clone()
	return nil
}

func (s *Store) GetMediaType(ctx context.Context, name string) (*catalogue.MediaType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, catalogue.ErrClosed
	}
	mt, ok := s.mediaTypes[name]
	if !ok {
		return nil, catalogue.ErrMediaTypeNotFound
	}
	return mt.Clone(), nil
}

func (s *Store) ListMediaTypes(ctx context.Context) ([]*catalogue.MediaType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, catalogue.ErrClosed
	}
	result := make([]*catalogue.MediaType, 0, len(s.mediaTypes))
	for _, mt := range s.mediaTypes {
		result = append(result, mt.Clone())
	}
	slices.SortFunc(result, func(a, b *catalogue.MediaType) int { return cmp.Compare(a.Name, b.Name) })
	return result, nil
}

func (s *Store) DeleteMediaType(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return catalogue.ErrClosed
	}
	if _, ok := s.mediaTypes[name]; !ok {
		return catalogue.ErrMediaTypeNotFound
	}
	for _, t := range s.tapes {
		if t.MediaType == name {
			return catalogue.ErrMediaTypeInUse
		}
	}
	delete(s.mediaTypes, name)
	return nil
}

// ============================================================================
// Tapes
// ============================================================================

func (s *Store) CreateTape(ctx context.Context, tape *catalogue.Tape) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tape.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return catalogue.ErrClosed
	}
	if _, ok := s.mediaTypes[tape.MediaType]; !ok {
		return catalogue.ErrMediaTypeNotFound
	}
	if _, ok := s.tapes[tape.VID]; ok {
		return catalogue.ErrDuplicateTape
	}

	now := time.Now()
	tape.CreatedAt, tape.UpdatedAt = now, now
	s.tapes[tape.VID] = tape.Clone()
	return nil
}

func (s *Store) GetTape(ctx context.Context, vid string) (*catalogue.Tape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, catalogue.ErrClosed
	}
	t, ok := s.tapes[vid]
	if !ok {
		return nil, catalogue.ErrTapeNotFound
	}
	return t.Clone(), nil
}

func (s *Store) ListTapes(ctx context.Context) ([]*catalogue.Tape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, catalogue.ErrClosed
	}
	result := make([]*catalogue.Tape, 0, len(s.tapes))
	for _, t := range s.tapes {
		result = append(result, t.Clone())
	}
	slices.SortFunc(result, func(a, b *catalogue.Tape) int { return cmp.Compare(a.VID, b.VID) })
	return result, nil
}

func (s *Store) DeleteTape(ctx context.Context, vid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return catalogue.ErrClosed
	}
	if _, ok := s.tapes[vid]; !ok {
		return catalogue.ErrTapeNotFound
	}
	delete(s.tapes, vid)
	return nil
}

// ============================================================================
// Lifecycle
// ============================================================================

func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return catalogue.ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ catalogue.Store = (*Store)(nil)

// Package badger is a catalogue backend on an embedded BadgerDB.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/rao"
)

// ============================================================================
// Key Namespace
// ============================================================================
//
// Data Type      Prefix   Key Format       Value Type
// =====================================================
// Media types    "mt:"    mt:<name>        MediaType (JSON)
// Tapes          "t:"     t:<vid>          Tape (JSON)

const (
	prefixMediaType = "mt:"
	prefixTape      = "t:"
)

func keyMediaType(name string) []byte { return []byte(prefixMediaType + name) }
func keyTape(vid string) []byte       { return []byte(prefixTape + vid) }

// Config configures the store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory keeps all data in memory.
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory,omitempty"`
}

// Store implements catalogue.Store on BadgerDB.
type Store struct {
	db *badgerdb.DB
}

// New opens or creates the database described by cfg.
func New(cfg Config) (*Store, error) {
	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger catalogue requires a path")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalogue directory: %w", err)
		}
		opts = badgerdb.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger catalogue: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Type() catalogue.Type {
	return catalogue.TypeBadger
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

	now := time.Now()
	mt.CreatedAt, mt.UpdatedAt = now, now

	return s.update(func(txn *badgerdb.Txn) error {
		if exists, err := has(txn, keyMediaType(mt.Name)); err != nil {
			return err
		} else if exists {
			return catalogue.ErrDuplicateMediaType
		}
		return put(txn, keyMediaType(mt.Name), mt)
	})
}

func (s *Store) GetMediaType(ctx context.Context, name string) (*catalogue.MediaType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mt := &catalogue.MediaType{}
	err := s.view(func(txn *badgerdb.Txn) error {
		return get(txn, keyMediaType(name), mt, catalogue.ErrMediaTypeNotFound)
	})
	if err != nil {
		return nil, err
	}
	return mt, nil
}

func (s *Store) ListMediaTypes(ctx context.Context) ([]*catalogue.MediaType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return list[catalogue.MediaType](s, prefixMediaType)
}

func (s *Store) DeleteMediaType(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.update(func(txn *badgerdb.Txn) error {
		if exists, err := has(txn, keyMediaType(name)); err != nil {
			return err
		} else if !exists {
			return catalogue.ErrMediaTypeNotFound
		}

		inUse := false
		err := scan(txn, prefixTape, func(val []byte) error {
			var t catalogue.Tape
			if err := json.Unmarshal(val, &t); err != nil {
				return err
			}
			if t.MediaType == name {
				inUse = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if inUse {
			return catalogue.ErrMediaTypeInUse
		}
		return txn.Delete(keyMediaType(name))
	})
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

	now := time.Now()
	tape.CreatedAt, tape.UpdatedAt = now, now

	return s.update(func(txn *badgerdb.Txn) error {
		if exists, err := has(txn, keyMediaType(tape.MediaType)); err != nil {
			return err
		} else if !exists {
			return catalogue.ErrMediaTypeNotFound
		}
		if exists, err := has(txn, keyTape(tape.VID)); err != nil {
			return err
		} else if exists {
			return catalogue.ErrDuplicateTape
		}
		return put(txn, keyTape(tape.VID), tape)
	})
}

func (s *Store) GetTape(ctx context.Context, vid string) (*catalogue.Tape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tape := &catalogue.Tape{}
	err := s.view(func(txn *badgerdb.Txn) error {
		return get(txn, keyTape(vid), tape, catalogue.ErrTapeNotFound)
	})
	if err != nil {
		return nil, err
	}
	return tape, nil
}

func (s *Store) ListTapes(ctx context.Context) ([]*catalogue.Tape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return list[catalogue.Tape](s, prefixTape)
}

func (s *Store) DeleteTape(ctx context.Context, vid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.update(func(txn *badgerdb.Txn) error {
		if exists, err := has(txn, keyTape(vid)); err != nil {
			return err
		} else if !exists {
			return catalogue.ErrTapeNotFound
		}
		return txn.Delete(keyTape(vid))
	})
}

// ============================================================================
// Lifecycle
// ============================================================================

// Healthcheck opens a read transaction to verify the database is usable.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.view(func(*badgerdb.Txn) error { return nil }); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================================================
// Transaction Helpers
// ============================================================================

func (s *Store) view(fn func(*badgerdb.Txn) error) error {
	if s.db.IsClosed() {
		return catalogue.ErrClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*badgerdb.Txn) error) error {
	if s.db.IsClosed() {
		return catalogue.ErrClosed
	}
	return s.db.Update(fn)
}

func has(txn *badgerdb.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func get(txn *badgerdb.Txn, key []byte, v any, notFound error) error {
	item, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func put(txn *badgerdb.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return txn.Set(key, data)
}

func scan(txn *badgerdb.Txn, prefix string, fn func(val []byte) error) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// list decodes every value under prefix. Keys iterate in byte order, so
// results are sorted by name or vid.
func list[T any](s *Store, prefix string) ([]*T, error) {
	result := []*T{}
	err := s.view(func(txn *badgerdb.Txn) error {
		return scan(txn, prefix, func(val []byte) error {
			v := new(T)
			if err := json.Unmarshal(val, v); err != nil {
				return err
			}
			result = append(result, v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ catalogue.Store = (*Store)(nil)

package catalogue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/catalogue/catalogtest"
	"github.com/marmos91/dittotape/pkg/catalogue/memory"
)

// ============================================================================
// Model Tests
// ============================================================================

func TestMediaType_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mt      catalogue.MediaType
		wantErr bool
	}{
		{"Complete", *catalogtest.LTO8(), false},
		{"NameOnly", catalogue.MediaType{Name: "LTO9"}, false},
		{"MissingName", catalogue.MediaType{Name: "  "}, true},
		{"MinAboveMax", catalogue.MediaType{Name: "X", MinLPos: catalogue.Uint64(10), MaxLPos: catalogue.Uint64(5)}, true},
		{"MinEqualsMax", catalogue.MediaType{Name: "X", MinLPos: catalogue.Uint64(5), MaxLPos: catalogue.Uint64(5)}, true},
		{"ZeroWraps", catalogue.MediaType{Name: "X", NbWraps: catalogue.Uint64(0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.mt.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, catalogue.ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTape_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&catalogue.Tape{VID: "V00001", MediaType: "LTO8"}).Validate())
	assert.ErrorIs(t, (&catalogue.Tape{MediaType: "LTO8"}).Validate(), catalogue.ErrInvalid)
	assert.ErrorIs(t, (&catalogue.Tape{VID: "V0000001", MediaType: "LTO8"}).Validate(), catalogue.ErrInvalid)
	assert.ErrorIs(t, (&catalogue.Tape{VID: "V00001"}).Validate(), catalogue.ErrInvalid)
}

func TestMediaType_GeometryCopiesPointers(t *testing.T) {
	t.Parallel()

	mt := catalogtest.LTO8()
	geo := mt.Geometry()
	require.True(t, geo.IsComplete())

	*geo.WrapCount = 4
	assert.Equal(t, uint64(208), *mt.NbWraps)
	assert.Equal(t, "LTO8", geo.Name)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, catalogue.IsNotFound(fmt.Errorf("lookup: %w", catalogue.ErrTapeNotFound)))
	assert.True(t, catalogue.IsNotFound(catalogue.ErrMediaTypeNotFound))
	assert.False(t, catalogue.IsNotFound(errors.New("other")))
	assert.True(t, catalogue.IsConflict(catalogue.ErrMediaTypeInUse))
	assert.True(t, catalogue.IsConflict(catalogue.ErrDuplicateTape))
	assert.False(t, catalogue.IsConflict(catalogue.ErrTapeNotFound))
}

// ============================================================================
// Instrumented Store Tests
// ============================================================================

type recordedOp struct {
	backend, op string
	failed      bool
}

type fakeMetrics struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (f *fakeMetrics) ObserveOperation(backend, operation string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{backend, operation, err != nil})
}

func TestInstrumented(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := &fakeMetrics{}
	s := catalogue.Instrument(memory.New(), m)

	require.NoError(t, s.CreateMediaType(ctx, catalogtest.LTO8()))
	require.NoError(t, s.CreateTape(ctx, &catalogue.Tape{VID: "V00001", MediaType: "LTO8"}))

	geo, err := s.MediaGeometry(ctx, "V00001")
	require.NoError(t, err)
	assert.True(t, geo.IsComplete())

	_, err = s.MediaGeometry(ctx, "V00404")
	assert.ErrorIs(t, err, catalogue.ErrTapeNotFound)

	assert.Contains(t, m.ops, recordedOp{"memory", "create_media_type", false})
	assert.Contains(t, m.ops, recordedOp{"memory", "create_tape", false})
	assert.Contains(t, m.ops, recordedOp{"memory", "media_geometry", false})
	assert.Contains(t, m.ops, recordedOp{"memory", "media_geometry", true})
}

func TestInstrument_NilMetricsAndRewrap(t *testing.T) {
	t.Parallel()

	inner := memory.New()
	s := catalogue.Instrument(inner, nil)
	assert.NoError(t, s.Healthcheck(context.Background()))

	again := catalogue.Instrument(s, &fakeMetrics{})
	assert.Same(t, catalogue.Store(inner), again.Unwrap())
}

package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/catalogue/catalogtest"
	"github.com/marmos91/dittotape/pkg/catalogue/memory"
)

func TestConformance(t *testing.T) {
	catalogtest.RunConformanceSuite(t, func(t *testing.T) catalogue.Store {
		return memory.New()
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.CreateMediaType(ctx, catalogtest.LTO8()))

	got, err := s.GetMediaType(ctx, "LTO8")
	require.NoError(t, err)
	*got.NbWraps = 1

	again, err := s.GetMediaType(ctx, "LTO8")
	require.NoError(t, err)
	assert.Equal(t, uint64(208), *again.NbWraps)
}

func TestStore_Closed(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Healthcheck(context.Background()), catalogue.ErrClosed)
	_, err := s.GetTape(context.Background(), "V00001")
	assert.ErrorIs(t, err, catalogue.ErrClosed)
}

func TestStore_CancelledContext(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListTapes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Package catalogtest is a conformance suite run against every catalogue
// backend.
package catalogtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittotape/pkg/catalogue"
)

// StoreFactory creates a fresh Store for each test. It may use t.TempDir
// and t.Cleanup.
type StoreFactory func(t *testing.T) catalogue.Store

// LTO8 returns a complete LTO-8 media type.
func LTO8() *catalogue.MediaType {
	return &catalogue.MediaType{
		Name:      "LTO8",
		Cartridge: "LTO-8",
		Capacity:  12000000000000,
		MinLPos:   catalogue.Uint64(2696),
		MaxLPos:   catalogue.Uint64(171097),
		NbWraps:   catalogue.Uint64(208),
	}
}

// RunConformanceSuite runs every catalogue test against factory.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("MediaTypes", func(t *testing.T) { runMediaTypeTests(t, factory) })
	t.Run("Tapes", func(t *testing.T) { runTapeTests(t, factory) })
	t.Run("MediaGeometry", func(t *testing.T) { runGeometryTests(t, factory) })
	t.Run("Lifecycle", func(t *testing.T) { runLifecycleTests(t, factory) })
}

func runMediaTypeTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, LTO8()))

		got, err := s.GetMediaType(ctx, "LTO8")
		require.NoError(t, err)
		assert.Equal(t, "LTO-8", got.Cartridge)
		require.NotNil(t, got.NbWraps)
		assert.Equal(t, uint64(208), *got.NbWraps)
		assert.Equal(t, uint64(2696), *got.MinLPos)
	})

	t.Run("OptionalGeometryStaysUnset", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, &catalogue.MediaType{Name: "LTO7M"}))
		got, err := s.GetMediaType(ctx, "LTO7M")
		require.NoError(t, err)
		assert.Nil(t, got.MinLPos)
		assert.Nil(t, got.MaxLPos)
		assert.Nil(t, got.NbWraps)
	})

	t.Run("Duplicate", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, LTO8()))
		err := s.CreateMediaType(ctx, LTO8())
		assert.ErrorIs(t, err, catalogue.ErrDuplicateMediaType)
	})

	t.Run("Invalid", func(t *testing.T) {
		s := factory(t)
		bad := LTO8()
		bad.MinLPos = catalogue.Uint64(200000)
		assert.ErrorIs(t, s.CreateMediaType(t.Context(), bad), catalogue.ErrInvalid)
	})

	t.Run("NotFound", func(t *testing.T) {
		s := factory(t)
		_, err := s.GetMediaType(t.Context(), "missing")
		assert.ErrorIs(t, err, catalogue.ErrMediaTypeNotFound)
		assert.ErrorIs(t, s.DeleteMediaType(t.Context(), "missing"), catalogue.ErrMediaTypeNotFound)
	})

	t.Run("ListSortedByName", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		list, err := s.ListMediaTypes(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		require.NoError(t, s.CreateMediaType(ctx, &catalogue.MediaType{Name: "LTO9"}))
		require.NoError(t, s.CreateMediaType(ctx, LTO8()))

		list, err = s.ListMediaTypes(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "LTO8", list[0].Name)
		assert.Equal(t, "LTO9", list[1].Name)
	})

	t.Run("DeleteInUse", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, LTO8()))
		require.NoError(t, s.CreateTape(ctx, &catalogue.Tape{VID: "V00001", MediaType: "LTO8"}))

		assert.ErrorIs(t, s.DeleteMediaType(ctx, "LTO8"), catalogue.ErrMediaTypeInUse)

		require.NoError(t, s.DeleteTape(ctx, "V00001"))
		require.NoError(t, s.DeleteMediaType(ctx, "LTO8"))
		_, err := s.GetMediaType(ctx, "LTO8")
		assert.ErrorIs(t, err, catalogue.ErrMediaTypeNotFound)
	})
}

func runTapeTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, LTO8()))
		require.NoError(t, s.CreateTape(ctx, &catalogue.Tape{VID: "V00001", MediaType: "LTO8", Comment: "first"}))

		got, err := s.GetTape(ctx, "V00001")
		require.NoError(t, err)
		assert.Equal(t, "LTO8", got.MediaType)
		assert.Equal(t, "first", got.Comment)
	})

	t.Run("UnknownMediaType", func(t *testing.T) {
		s := factory(t)
		err := s.CreateTape(t.Context(), &catalogue.Tape{VID: "V00001", MediaType: "LTO8"})
		assert.ErrorIs(t, err, catalogue.ErrMediaTypeNotFound)
	})

	t.Run("Duplicate", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, LTO8()))
		require.NoError(t, s.CreateTape(ctx, &catalogue.Tape{VID: "V00001", MediaType: "LTO8"}))
		err := s.CreateTape(ctx, &catalogue.Tape{VID: "V00001", MediaType: "LTO8"})
		assert.ErrorIs(t, err, catalogue.ErrDuplicateTape)
	})

	t.Run("Invalid", func(t *testing.T) {
		s := factory(t)
		err := s.CreateTape(t.Context(), &catalogue.Tape{VID: "TOOLONGVID", MediaType: "LTO8"})
		assert.ErrorIs(t, err, catalogue.ErrInvalid)
	})

	t.Run("NotFound", func(t *testing.T) {
		s := factory(t)
		_, err := s.GetTape(t.Context(), "V99999")
		assert.ErrorIs(t, err, catalogue.ErrTapeNotFound)
		assert.ErrorIs(t, s.DeleteTape(t.Context(), "V99999"), catalogue.ErrTapeNotFound)
	})

	t.Run("ListSortedByVID", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, LTO8()))
		for _, vid := range []string{"V00003", "V00001", "V00002"} {
			require.NoError(t, s.CreateTape(ctx, &catalogue.Tape{VID: vid, MediaType: "LTO8"}))
		}

		list, err := s.ListTapes(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"V00001", "V00002", "V00003"}, []string{list[0].VID, list[1].VID, list[2].VID})
	})
}

func runGeometryTests(t *testing.T, factory StoreFactory) {
	t.Run("Complete", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, LTO8()))
		require.NoError(t, s.CreateTape(ctx, &catalogue.Tape{VID: "V00001", MediaType: "LTO8"}))

		geo, err := s.MediaGeometry(ctx, "V00001")
		require.NoError(t, err)
		assert.Equal(t, "LTO8", geo.Name)
		assert.True(t, geo.IsComplete())
		assert.Equal(t, uint64(171097), *geo.MaxPos)
	})

	t.Run("Incomplete", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateMediaType(ctx, &catalogue.MediaType{Name: "LTO7M", MinLPos: catalogue.Uint64(2696)}))
		require.NoError(t, s.CreateTape(ctx, &catalogue.Tape{VID: "V00002", MediaType: "LTO7M"}))

		geo, err := s.MediaGeometry(ctx, "V00002")
		require.NoError(t, err)
		assert.False(t, geo.IsComplete())
	})

	t.Run("UnknownTape", func(t *testing.T) {
		s := factory(t)
		_, err := s.MediaGeometry(t.Context(), "V00404")
		assert.True(t, catalogue.IsNotFound(err))
		assert.True(t, errors.Is(err, catalogue.ErrTapeNotFound))
	})
}

func runLifecycleTests(t *testing.T, factory StoreFactory) {
	t.Run("Healthcheck", func(t *testing.T) {
		s := factory(t)
		assert.NoError(t, s.Healthcheck(t.Context()))
	})

	t.Run("TypeIsSet", func(t *testing.T) {
		s := factory(t)
		assert.NotEmpty(t, s.Type())
	})
}

package algorithm

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittotape/pkg/drive"
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/cost"
	"github.com/marmos91/dittotape/pkg/rao/estimator"
)

// ============================================================================
// Fixtures
// ============================================================================

func ptr(v uint64) *uint64 { return &v }

func testCalibration() []rao.CalibrationPoint {
	return []rao.CalibrationPoint{
		{WrapIndex: 0, BlockID: 208310},
		{WrapIndex: 1, BlockID: 416271},
		{WrapIndex: 2, BlockID: 624562},
		{WrapIndex: 3, BlockID: 633521},
	}
}

func testMedia() *rao.MediaGeometry {
	return &rao.MediaGeometry{
		Name:      "LTO8",
		MinPos:    ptr(2696),
		MaxPos:    ptr(171097),
		WrapCount: ptr(4),
	}
}

func newTestSLTF(t *testing.T) *Algorithm {
	t.Helper()

	est, err := estimator.New(estimator.KindInterpolation, testCalibration(), testMedia(), 0)
	require.NoError(t, err)
	heuristic, err := cost.New(cost.KindCTA, cost.DefaultWeights())
	require.NoError(t, err)
	alg, err := NewSLTF(est, heuristic)
	require.NoError(t, err)
	return alg
}

func jobsAt(blocks ...uint64) []rao.Job {
	jobs := make([]rao.Job, len(blocks))
	for i, b := range blocks {
		jobs[i] = rao.FileJob{Block: b, Seq: uint64(i + 1), Size: 1024}
	}
	return jobs
}

func jobsWithFSeq(fseqs ...uint64) []rao.Job {
	jobs := make([]rao.Job, len(fseqs))
	for i, f := range fseqs {
		jobs[i] = rao.FileJob{Block: uint64(i) * 100, Seq: f}
	}
	return jobs
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// stubDrive answers native queries with a fixed function.
type stubDrive struct {
	answer func(segments []drive.Segment) ([]drive.Segment, error)
}

func (s *stubDrive) ProbeCapability(context.Context) (drive.UDSLimits, error) {
	return drive.UDSLimits{MaxSupported: 100}, nil
}

func (s *stubDrive) EndOfWrapPositions(context.Context) ([]drive.EndOfWrapPosition, error) {
	return nil, nil
}

func (s *stubDrive) QueryNativeOrder(_ context.Context, segments []drive.Segment, _ int) ([]drive.Segment, error) {
	return s.answer(segments)
}

// ============================================================================
// Linear Tests
// ============================================================================

func TestLinear(t *testing.T) {
	t.Parallel()

	t.Run("sorts by ascending fseq", func(t *testing.T) {
		t.Parallel()
		res, err := NewLinear().PerformRAO(context.Background(), jobsWithFSeq(40, 10, 30, 20))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 2, 0}, res.Order)
	})

	t.Run("keeps request order for equal fseqs", func(t *testing.T) {
		t.Parallel()
		res, err := NewLinear().PerformRAO(context.Background(), jobsWithFSeq(5, 3, 3, 1))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2, 0}, res.Order)
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()
		res, err := NewLinear().PerformRAO(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, res.Order)
	})

	t.Run("reports sort stage", func(t *testing.T) {
		t.Parallel()
		res, err := NewLinear().PerformRAO(context.Background(), jobsWithFSeq(1, 2))
		require.NoError(t, err)
		require.Len(t, res.Timings, 1)
		assert.Equal(t, StageSort, res.Timings[0].Name)
	})
}

// ============================================================================
// Random Tests
// ============================================================================

func TestRandom(t *testing.T) {
	t.Parallel()

	alg := NewRandom(rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, rao.AlgorithmRandom, alg.Name())

	for range 10 {
		res, err := alg.PerformRAO(context.Background(), jobsWithFSeq(1, 2, 3, 4, 5, 6, 7, 8))
		require.NoError(t, err)
		assert.True(t, isPermutation(res.Order, 8), "not a permutation: %v", res.Order)
	}
}

func TestRandom_DefaultSource(t *testing.T) {
	t.Parallel()

	res, err := NewRandom(nil).PerformRAO(context.Background(), jobsWithFSeq(3, 2, 1))
	require.NoError(t, err)
	assert.True(t, isPermutation(res.Order, 3))
}

// ============================================================================
// Native Tests
// ============================================================================

func TestNewNative_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewNative(nil, 10)
	assert.True(t, rao.IsConfigurationError(err))

	_, err = NewNative(drive.NewSimulated(), 0)
	assert.True(t, rao.IsConfigurationError(err))
}

func TestNative_Chunking(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: 3}))
	alg, err := NewNative(d, 3)
	require.NoError(t, err)

	res, err := alg.PerformRAO(context.Background(), jobsAt(70, 60, 50, 40, 30, 20, 10))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1, 0, 5, 4, 3, 6}, res.Order)
	assert.Equal(t, []int{3, 3}, d.QuerySizes(), "trailing single file must not be queried")
}

func TestNative_TrailingPairIsQueried(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: 3}))
	alg, err := NewNative(d, 3)
	require.NoError(t, err)

	res, err := alg.PerformRAO(context.Background(), jobsAt(30, 20, 10, 90, 80))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1, 0, 4, 3}, res.Order)
	assert.Equal(t, []int{3, 2}, d.QuerySizes())
}

func TestNative_SingleFileBatch(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: 3}))
	alg, err := NewNative(d, 3)
	require.NoError(t, err)

	res, err := alg.PerformRAO(context.Background(), jobsAt(42))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.Order)
	assert.Empty(t, d.QuerySizes())
}

func TestNative_Observer(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: 2}))
	alg, err := NewNative(d, 2)
	require.NoError(t, err)

	var files []int
	alg.OnNativeQuery(func(n int, _ time.Duration, err error) {
		assert.NoError(t, err)
		files = append(files, n)
	})

	_, err = alg.PerformRAO(context.Background(), jobsAt(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, files)
}

func TestNative_Errors(t *testing.T) {
	t.Parallel()

	t.Run("drive failure is wrapped", func(t *testing.T) {
		t.Parallel()
		d := drive.NewSimulated() // no limits: refuses native queries
		alg, err := NewNative(d, 4)
		require.NoError(t, err)

		res, err := alg.PerformRAO(context.Background(), jobsAt(1, 2, 3))
		require.Error(t, err)
		assert.True(t, errors.Is(err, drive.ErrNativeUnsupported))
		assert.Empty(t, res.Order)
	})

	tests := []struct {
		name   string
		answer func([]drive.Segment) ([]drive.Segment, error)
	}{
		{
			name: "missing segment",
			answer: func(s []drive.Segment) ([]drive.Segment, error) {
				return s[:len(s)-1], nil
			},
		},
		{
			name: "duplicate segment",
			answer: func(s []drive.Segment) ([]drive.Segment, error) {
				return []drive.Segment{s[0], s[0], s[1]}, nil
			},
		},
		{
			name: "unknown segment name",
			answer: func(s []drive.Segment) ([]drive.Segment, error) {
				out := append([]drive.Segment(nil), s...)
				out[0].Name = "bogus"
				return out, nil
			},
		},
		{
			name: "segment from another chunk",
			answer: func(s []drive.Segment) ([]drive.Segment, error) {
				out := append([]drive.Segment(nil), s...)
				out[0].Name = "99"
				return out, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			alg, err := NewNative(&stubDrive{answer: tt.answer}, 10)
			require.NoError(t, err)

			res, err := alg.PerformRAO(context.Background(), jobsAt(1, 2, 3))
			require.Error(t, err)
			assert.True(t, rao.IsNativeOrderError(err), "got %v", err)
			assert.Empty(t, res.Order)
		})
	}
}

func TestNative_Cancelled(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: 4}))
	alg, err := NewNative(d, 4)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = alg.PerformRAO(ctx, jobsAt(1, 2, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================================================
// SLTF Tests
// ============================================================================

func TestNewSLTF_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewSLTF(nil, nil)
	assert.True(t, rao.IsConfigurationError(err))
}

func TestSLTF_SingleJob(t *testing.T) {
	t.Parallel()

	res, err := newTestSLTF(t).PerformRAO(context.Background(), jobsAt(300000))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.Order)
}

func TestSLTF_EmptyBatch(t *testing.T) {
	t.Parallel()

	res, err := newTestSLTF(t).PerformRAO(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Order)
}

func TestSLTF_PrefersLowerCost(t *testing.T) {
	t.Parallel()

	// From the start of tape, block 50000 is closer than block 100000.
	res, err := newTestSLTF(t).PerformRAO(context.Background(), jobsAt(100000, 50000))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, res.Order)
}

func TestSLTF_FollowsSerpentine(t *testing.T) {
	t.Parallel()

	// Files along wrap 0 then right after the turn onto wrap 1, requested
	// in reverse order.
	res, err := newTestSLTF(t).PerformRAO(context.Background(),
		jobsAt(215000, 150000, 100000, 10000))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 0}, res.Order)
}

func TestSLTF_TieBrokenByIndex(t *testing.T) {
	t.Parallel()

	res, err := newTestSLTF(t).PerformRAO(context.Background(), jobsAt(5000, 5000, 5000))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, res.Order)
}

func TestSLTF_GeometryError(t *testing.T) {
	t.Parallel()

	res, err := newTestSLTF(t).PerformRAO(context.Background(), jobsAt(1000, 100000000))
	require.Error(t, err)
	assert.True(t, rao.IsGeometryError(err))
	assert.Empty(t, res.Order, "no partial order on error")
}

func TestSLTF_Timings(t *testing.T) {
	t.Parallel()

	res, err := newTestSLTF(t).PerformRAO(context.Background(), jobsAt(1000, 2000))
	require.NoError(t, err)
	require.Len(t, res.Timings, 2)
	assert.Equal(t, StagePositions, res.Timings[0].Name)
	assert.Equal(t, StageTour, res.Timings[1].Name)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{0, 1, 2}, Identity(3))
	assert.Empty(t, Identity(0))
}

package manager

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/catalogue/memory"
	"github.com/marmos91/dittotape/pkg/drive"
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/cost"
)

// ============================================================================
// Test Fixtures
// ============================================================================

const testVID = "V00001"

func testCalibration() []rao.CalibrationPoint {
	return []rao.CalibrationPoint{
		{WrapIndex: 0, BlockID: 208310},
		{WrapIndex: 1, BlockID: 416271},
		{WrapIndex: 2, BlockID: 624562},
		{WrapIndex: 3, BlockID: 633521},
	}
}

func newTestCatalogue(t *testing.T, mt *catalogue.MediaType) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.CreateMediaType(ctx, mt))
	require.NoError(t, store.CreateTape(ctx, &catalogue.Tape{VID: testVID, MediaType: mt.Name}))
	return store
}

func completeMediaType() *catalogue.MediaType {
	return &catalogue.MediaType{
		Name:    "LTO8",
		MinLPos: catalogue.Uint64(2696),
		MaxLPos: catalogue.Uint64(171097),
		NbWraps: catalogue.Uint64(4),
	}
}

func params(algorithm string) Params {
	return Params{
		Enabled:           true,
		Algorithm:         algorithm,
		EnterpriseEnabled: true,
		VID:               testVID,
		Drive:             "drive0",
	}
}

func jobsAt(blocks ...uint64) []rao.Job {
	jobs := make([]rao.Job, len(blocks))
	for i, b := range blocks {
		jobs[i] = rao.FileJob{Block: b, Seq: uint64(len(blocks) - i), Size: 1024}
	}
	return jobs
}

func newManager(t *testing.T, p Params, d drive.Drive, cat catalogue.Catalogue, opts ...Option) *Manager {
	t.Helper()
	m, err := New(p, d, cat, opts...)
	require.NoError(t, err)
	return m
}

type fakeMetrics struct {
	mu          sync.Mutex
	queries     []string
	stages      []string
	fallbacks   []string
	native      []int
	resolutions []string
}

func (f *fakeMetrics) ObserveQuery(algorithm string, _ int, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	f.queries = append(f.queries, algorithm+":"+status)
}

func (f *fakeMetrics) ObserveStage(algorithm, stage string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, algorithm+":"+stage)
}

func (f *fakeMetrics) RecordFallback(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallbacks = append(f.fallbacks, reason)
}

func (f *fakeMetrics) RecordNativeQuery(files int, _ time.Duration, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.native = append(f.native, files)
}

func (f *fakeMetrics) RecordResolution(algorithm string, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolutions = append(f.resolutions, algorithm)
}

// ============================================================================
// Capability Resolution Tests
// ============================================================================

func TestResolveCapability(t *testing.T) {
	t.Parallel()

	limits := drive.UDSLimits{MaxSupported: 30, MaxSize: 1024}

	tests := []struct {
		name       string
		limits     drive.UDSLimits
		probeErr   error
		enterprise bool
		want       rao.Capability
	}{
		{"NativeWithEnterprise", limits, nil, true, rao.Capability{HasNativeSupport: true, MaxFilesPerNativeQuery: 30}},
		{"LimitKnownWithoutEnterprise", limits, nil, false, rao.Capability{MaxFilesPerNativeQuery: 30}},
		{"Unsupported", drive.UDSLimits{}, drive.ErrNativeUnsupported, true, rao.Capability{}},
		{"ProbeFailed", limits, errors.New("sense key 5"), true, rao.Capability{}},
		{"ZeroLimit", drive.UDSLimits{}, nil, true, rao.Capability{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveCapability(tt.limits, tt.probeErr, tt.enterprise))
		})
	}
}

// ============================================================================
// Construction and Enablement Tests
// ============================================================================

func TestNew_RequiresDrive(t *testing.T) {
	t.Parallel()

	_, err := New(params("linear"), nil, nil)
	require.Error(t, err)
	assert.True(t, rao.IsConfigurationError(err))
}

func TestQueryRAO_DisabledReturnsIdentity(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated()
	p := params("sltf")
	p.Enabled = false
	m := newManager(t, p, d, nil)

	order, err := m.QueryRAO(context.Background(), jobsAt(30, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Zero(t, d.ProbeCalls(), "disabled RAO must not touch the drive")
	assert.False(t, m.Enabled())
}

func TestDisable(t *testing.T) {
	t.Parallel()

	m := newManager(t, params("linear"), drive.NewSimulated(), nil)
	require.True(t, m.Enabled())

	order, err := m.QueryRAO(context.Background(), jobsAt(30, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, order)

	m.Disable()
	order, err = m.QueryRAO(context.Background(), jobsAt(30, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}

// ============================================================================
// Selection Tests
// ============================================================================

func TestResolve_LinearResolvesOnce(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated()
	m := newManager(t, params("linear"), d, nil)

	_, ok := m.Capability()
	assert.False(t, ok, "no capability before resolution")

	for range 3 {
		_, err := m.QueryRAO(context.Background(), jobsAt(1, 2, 3))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, d.ProbeCalls())

	res, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rao.AlgorithmLinear, res.Algorithm.Name())
	assert.False(t, res.FellBack)

	capability, ok := m.Capability()
	assert.True(t, ok)
	assert.False(t, capability.HasNativeSupport)
	_, ok = m.MaxFilesSupported()
	assert.False(t, ok)
}

func TestResolve_UnknownAlgorithmFallsBackToLinear(t *testing.T) {
	t.Parallel()

	fm := &fakeMetrics{}
	m := newManager(t, params("fastest"), drive.NewSimulated(), nil, WithMetrics(fm))

	res, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rao.AlgorithmLinear, res.Algorithm.Name())
	assert.True(t, res.FellBack)
	assert.Equal(t, "fastest", res.Configured)
	assert.Equal(t, []string{FallbackUnknownAlgorithm}, fm.fallbacks)
}

func TestResolve_NativeWhenCapableAndEnterprise(t *testing.T) {
	t.Parallel()

	fm := &fakeMetrics{}
	d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: 3, MaxSize: 64}))
	m := newManager(t, params("sltf"), d, nil, WithMetrics(fm))

	order, err := m.QueryRAO(context.Background(), jobsAt(70, 60, 50, 40, 30, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0, 5, 4, 3, 6}, order)
	assert.Equal(t, []int{3, 3}, d.QuerySizes())
	assert.Equal(t, []int{3, 3}, fm.native)
	assert.Zero(t, d.CalibrationCalls(), "native ordering needs no calibration")

	maxFiles, ok := m.MaxFilesSupported()
	assert.True(t, ok)
	assert.Equal(t, 3, maxFiles)
	assert.Equal(t, []string{"native"}, fm.resolutions)
	assert.Equal(t, []string{"native:ok"}, fm.queries)
	assert.Equal(t, []string{"native:native_query"}, fm.stages)
}

func TestResolve_NoNativeWithoutEnterprise(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: 3}))
	p := params("linear")
	p.EnterpriseEnabled = false
	m := newManager(t, p, d, nil)

	res, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rao.AlgorithmLinear, res.Algorithm.Name())

	maxFiles, ok := m.MaxFilesSupported()
	assert.True(t, ok, "the limit is known even when native ordering is not used")
	assert.Equal(t, 3, maxFiles)
}

func TestResolve_ProbeFailureUsesSoftware(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithProbeError(errors.New("sense key 5")))
	m := newManager(t, params("random"), d, nil, WithRandSource(rand.New(rand.NewPCG(1, 2))))

	res, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rao.AlgorithmRandom, res.Algorithm.Name())

	order, err := m.QueryRAO(context.Background(), jobsAt(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, order)
}

func TestResolve_CancelledIsNotCached(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated()
	m := newManager(t, params("linear"), d, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Resolve(ctx)
	require.ErrorIs(t, err, context.Canceled)

	res, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rao.AlgorithmLinear, res.Algorithm.Name())
}

// ============================================================================
// SLTF Selection Tests
// ============================================================================

func TestResolve_SLTF(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithCalibration(testCalibration()))
	m := newManager(t, params("sltf"), d, newTestCatalogue(t, completeMediaType()))

	result, err := m.Query(context.Background(), jobsAt(215000, 150000, 100000, 10000))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 0}, result.Order)

	var stages []string
	for _, s := range result.Timings {
		stages = append(stages, s.Name)
	}
	assert.Equal(t, []string{"positions", "tour"}, stages)
	assert.Equal(t, 1, d.CalibrationCalls())
}

func TestResolve_SLTFUsesCorrectedLastBoundary(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithCalibration(testCalibration()))
	m := newManager(t, params("sltf"), d, newTestCatalogue(t, completeMediaType()))

	// 700000 lies past the reported last boundary 633521 but before the
	// corrected one, 832749.
	order, err := m.QueryRAO(context.Background(), jobsAt(700000, 10))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1}, order)

	_, err = m.QueryRAO(context.Background(), jobsAt(900000, 10))
	require.Error(t, err)
	assert.True(t, rao.IsGeometryError(err))

	var raoErr *rao.Error
	require.ErrorAs(t, err, &raoErr)
	assert.Equal(t, testVID, raoErr.VID)

	// a failed batch leaves the mount usable
	_, err = m.QueryRAO(context.Background(), jobsAt(10, 20))
	assert.NoError(t, err)
}

func TestResolve_SLTFFailuresAreFatalAndCached(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		drive *drive.Simulated
		cat   func(t *testing.T) catalogue.Catalogue
		opts  Options
		check func(t *testing.T, err error)
	}{
		{
			name:  "NoCatalogue",
			drive: drive.NewSimulated(drive.WithCalibration(testCalibration())),
			cat:   func(*testing.T) catalogue.Catalogue { return nil },
			check: func(t *testing.T, err error) { assert.True(t, rao.IsConfigurationError(err)) },
		},
		{
			name:  "IncompleteMediaType",
			drive: drive.NewSimulated(drive.WithCalibration(testCalibration())),
			cat: func(t *testing.T) catalogue.Catalogue {
				return newTestCatalogue(t, &catalogue.MediaType{Name: "LTO7M", MinLPos: catalogue.Uint64(2696)})
			},
			check: func(t *testing.T, err error) { assert.True(t, rao.IsConfigurationError(err)) },
		},
		{
			name:  "UnknownTape",
			drive: drive.NewSimulated(drive.WithCalibration(testCalibration())),
			cat:   func(*testing.T) catalogue.Catalogue { return memory.New() },
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, catalogue.ErrTapeNotFound) },
		},
		{
			name:  "CalibrationReadFails",
			drive: drive.NewSimulated(drive.WithCalibrationError(errors.New("medium error"))),
			cat:   func(t *testing.T) catalogue.Catalogue { return newTestCatalogue(t, completeMediaType()) },
			check: func(t *testing.T, err error) { assert.ErrorContains(t, err, "medium error") },
		},
		{
			// A decreasing last boundary must not be hidden by the correction.
			name: "UnorderedCalibration",
			drive: drive.NewSimulated(drive.WithCalibration([]rao.CalibrationPoint{
				{WrapIndex: 0, BlockID: 100},
				{WrapIndex: 1, BlockID: 300},
				{WrapIndex: 2, BlockID: 200},
			})),
			cat:   func(t *testing.T) catalogue.Catalogue { return newTestCatalogue(t, completeMediaType()) },
			check: func(t *testing.T, err error) { assert.True(t, rao.IsConfigurationError(err)) },
		},
		{
			name:  "UnknownEstimator",
			drive: drive.NewSimulated(drive.WithCalibration(testCalibration())),
			cat:   func(t *testing.T) catalogue.Catalogue { return newTestCatalogue(t, completeMediaType()) },
			opts:  Options{Estimator: "oracle"},
			check: func(t *testing.T, err error) { assert.True(t, rao.IsConfigurationError(err)) },
		},
		{
			name:  "NegativeWeights",
			drive: drive.NewSimulated(drive.WithCalibration(testCalibration())),
			cat:   func(t *testing.T) catalogue.Catalogue { return newTestCatalogue(t, completeMediaType()) },
			opts:  Options{Weights: cost.Weights{Distance: -1}},
			check: func(t *testing.T, err error) { assert.True(t, rao.IsConfigurationError(err)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := params("sltf")
			p.Options = tt.opts
			m := newManager(t, p, tt.drive, tt.cat(t))

			_, err := m.QueryRAO(context.Background(), jobsAt(10, 20))
			require.Error(t, err)
			tt.check(t, err)

			_, again := m.QueryRAO(context.Background(), jobsAt(10, 20))
			assert.Equal(t, err, again, "resolution failure is cached for the mount")
			assert.Equal(t, 1, tt.drive.ProbeCalls())
		})
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestQueryRAO_ConcurrentAfterResolution(t *testing.T) {
	t.Parallel()

	d := drive.NewSimulated(drive.WithCalibration(testCalibration()))
	m := newManager(t, params("sltf"), d, newTestCatalogue(t, completeMediaType()))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := m.QueryRAO(context.Background(), jobsAt(215000, 150000, 100000, 10000))
			if err == nil && len(order) != 4 {
				err = errors.New("short order")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, d.ProbeCalls())
	assert.Equal(t, 1, d.CalibrationCalls())
}

func TestMountID(t *testing.T) {
	t.Parallel()

	a := newManager(t, params("linear"), drive.NewSimulated(), nil)
	b := newManager(t, params("linear"), drive.NewSimulated(), nil)
	assert.NotEmpty(t, a.MountID())
	assert.NotEqual(t, a.MountID(), b.MountID())
}

// Package manager selects and runs the RAO algorithm of one mount.
//
// A Manager resolves once, on the first query: it probes the drive, decides
// between native and software ordering, and for SLTF builds the estimator
// from the drive calibration table and the catalogue media geometry. The
// resolution, or the error that prevented it, is cached for the mount.
package manager

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/internal/telemetry"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/drive"
	"github.com/marmos91/dittotape/pkg/metrics"
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/algorithm"
	"github.com/marmos91/dittotape/pkg/rao/cost"
	"github.com/marmos91/dittotape/pkg/rao/estimator"
	"github.com/marmos91/dittotape/pkg/rao/geometry"
)

// Fallback reasons reported to metrics.
const (
	FallbackUnknownAlgorithm = "unknown_algorithm"
)

// Options names and tunes the SLTF components.
type Options struct {
	// CostHeuristic is the cost heuristic kind, "cta" when empty.
	CostHeuristic string

	// Estimator is the file position estimator kind, "interpolation" when
	// empty.
	Estimator string

	// Weights tune the cost heuristic. Zero weights select the defaults.
	Weights cost.Weights

	// BlockSize is the tape block size in bytes. Zero selects
	// estimator.DefaultBlockSize.
	BlockSize uint64
}

// Params is the mount configuration, read once at mount start.
type Params struct {
	// Enabled turns RAO on. A disabled manager returns the identity order.
	Enabled bool

	// Algorithm is the configured name: linear, random or sltf.
	Algorithm string

	// EnterpriseEnabled allows native ordering on capable drives.
	EnterpriseEnabled bool

	// VID is the volume id of the mounted tape.
	VID string

	// Drive names the drive in logs.
	Drive string

	Options Options
}

// Resolution is the outcome of resolving a mount. It is immutable.
type Resolution struct {
	// Capability is the resolved drive capability.
	Capability rao.Capability

	// Algorithm is the algorithm used for every query of the mount.
	Algorithm *algorithm.Algorithm

	// Configured is the algorithm name as configured.
	Configured string

	// FellBack is true when an unknown configured name was replaced by
	// linear.
	FellBack bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records RAO metrics. A nil value disables recording.
func WithMetrics(m metrics.RAOMetrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// WithRandSource sets the random source of the random algorithm.
func WithRandSource(rng *rand.Rand) Option {
	return func(mgr *Manager) {
		mgr.rng = rng
	}
}

// Manager is the per-mount RAO entry point.
//
// Resolution is serialized; once resolved, queries may run concurrently.
type Manager struct {
	params    Params
	drive     drive.Drive
	catalogue catalogue.Catalogue
	metrics   metrics.RAOMetrics
	rng       *rand.Rand
	lc        *logger.LogContext

	enabled atomic.Bool

	mu         sync.Mutex
	resolved   *Resolution
	resolveErr error
}

// New creates a manager for one mount. The catalogue is only consulted when
// SLTF is selected and may be nil otherwise.
func New(params Params, d drive.Drive, cat catalogue.Catalogue, opts ...Option) (*Manager, error) {
	if d == nil {
		return nil, rao.NewConfigurationError("RAO manager requires a drive").WithVID(params.VID)
	}

	m := &Manager{
		params:    params,
		drive:     d,
		catalogue: cat,
		lc:        logger.NewLogContext(params.VID, params.Drive),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.enabled.Store(params.Enabled)
	return m, nil
}

// ResolveCapability derives the drive capability from the probe result.
//
// The file limit is known whenever the probe succeeded with a positive
// limit. Native ordering additionally requires enterprise mode.
func ResolveCapability(limits drive.UDSLimits, probeErr error, enterpriseEnabled bool) rao.Capability {
	if probeErr != nil || limits.MaxSupported == 0 {
		return rao.Capability{}
	}
	return rao.Capability{
		HasNativeSupport:       enterpriseEnabled,
		MaxFilesPerNativeQuery: int(limits.MaxSupported),
	}
}

// Enabled reports whether RAO is on for this mount.
func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}

// Disable turns RAO off for the rest of the mount.
func (m *Manager) Disable() {
	m.enabled.Store(false)
}

// Capability returns the resolved capability and whether resolution has
// completed successfully.
func (m *Manager) Capability() (rao.Capability, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolved == nil {
		return rao.Capability{}, false
	}
	return m.resolved.Capability, true
}

// MaxFilesSupported returns the per-query file limit of the drive, used by
// callers to size batches. ok is false before resolution or when the drive
// reported no limit.
func (m *Manager) MaxFilesSupported() (int, bool) {
	capability, ok := m.Capability()
	if !ok {
		return 0, false
	}
	return capability.MaxFiles()
}

// Resolve picks the algorithm of the mount. The first call does the work;
// later calls return the cached resolution or error. A resolution
// interrupted by ctx is not cached.
func (m *Manager) Resolve(ctx context.Context) (*Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.resolved != nil || m.resolveErr != nil {
		return m.resolved, m.resolveErr
	}

	ctx = m.logContext(ctx)
	ctx, span := telemetry.StartResolveSpan(ctx, m.params.VID)
	defer span.End()

	res, err := m.resolve(ctx)
	if err != nil && ctx.Err() != nil {
		// cancellation does not condemn the mount
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if err != nil {
		var raoErr *rao.Error
		if errors.As(err, &raoErr) && raoErr.VID == "" {
			err = fmt.Errorf("resolve RAO algorithm: %w", raoErr.WithVID(m.params.VID))
		} else {
			err = fmt.Errorf("resolve RAO algorithm for %s: %w", m.params.VID, err)
		}
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "RAO resolution failed", logger.Err(err), logger.KeyErrorCode, rao.CodeOf(err).String())
		m.recordResolution("", err)
		m.resolveErr = err
		return nil, err
	}

	telemetry.SetAttributes(ctx, telemetry.Algorithm(res.Algorithm.Name().String()), telemetry.Native(res.Capability.HasNativeSupport))
	logger.InfoCtx(ctx, "RAO algorithm resolved",
		logger.Algorithm(res.Algorithm.Name().String()),
		logger.KeyConfigured, res.Configured,
		logger.KeyMaxFiles, res.Capability.MaxFilesPerNativeQuery,
	)
	m.recordResolution(res.Algorithm.Name().String(), nil)
	m.resolved = res
	return res, nil
}

func (m *Manager) resolve(ctx context.Context) (*Resolution, error) {
	limits, probeErr := m.probe(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Resolution{
		Capability: ResolveCapability(limits, probeErr, m.params.EnterpriseEnabled),
		Configured: m.params.Algorithm,
	}

	if res.Capability.HasNativeSupport {
		alg, err := algorithm.NewNative(m.drive, res.Capability.MaxFilesPerNativeQuery)
		if err != nil {
			return nil, err
		}
		alg.OnNativeQuery(m.observeNative)
		res.Algorithm = alg
		return res, nil
	}

	name, err := rao.ParseAlgorithmName(m.params.Algorithm)
	if err != nil {
		res.FellBack = true
		logger.WarnCtx(ctx, "Unknown RAO algorithm, falling back to linear",
			logger.KeyConfigured, m.params.Algorithm,
			logger.Algorithm(name.String()),
			logger.Err(err),
		)
		telemetry.AddEvent(ctx, telemetry.EventAlgorithmFallback, telemetry.Algorithm(name.String()))
		if m.metrics != nil {
			m.metrics.RecordFallback(FallbackUnknownAlgorithm)
		}
	}

	switch name {
	case rao.AlgorithmRandom:
		res.Algorithm = algorithm.NewRandom(m.rng)
	case rao.AlgorithmSLTF:
		alg, err := m.buildSLTF(ctx)
		if err != nil {
			return nil, err
		}
		res.Algorithm = alg
	default:
		res.Algorithm = algorithm.NewLinear()
	}
	return res, nil
}

// probe queries the drive capability. Any probe failure means no native
// ordering; only cancellation is reported by the caller.
func (m *Manager) probe(ctx context.Context) (drive.UDSLimits, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanDriveProbe)
	defer span.End()

	limits, err := m.drive.ProbeCapability(ctx)
	switch {
	case err == nil:
		telemetry.SetAttributes(ctx, telemetry.MaxFiles(int(limits.MaxSupported)))
	case errors.Is(err, drive.ErrNativeUnsupported):
		logger.DebugCtx(ctx, "Drive has no native RAO support")
	default:
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "Drive RAO capability probe failed, using software RAO", logger.Err(err))
	}
	return limits, err
}

// buildSLTF fetches the calibration table and media geometry and builds the
// SLTF components. Every failure is fatal for the mount.
func (m *Manager) buildSLTF(ctx context.Context) (*algorithm.Algorithm, error) {
	opts := m.params.Options

	estimatorName := opts.Estimator
	if estimatorName == "" {
		estimatorName = rao.DefaultEstimator
	}
	estimatorKind, err := estimator.ParseKind(estimatorName)
	if err != nil {
		return nil, err
	}

	heuristicName := opts.CostHeuristic
	if heuristicName == "" {
		heuristicName = rao.DefaultCostHeuristic
	}
	heuristicKind, err := cost.ParseKind(heuristicName)
	if err != nil {
		return nil, err
	}

	if m.catalogue == nil {
		return nil, rao.NewConfigurationError("SLTF requires a catalogue for media geometry")
	}

	points, err := m.calibration(ctx)
	if err != nil {
		return nil, err
	}

	media, err := m.catalogue.MediaGeometry(ctx, m.params.VID)
	if err != nil {
		return nil, fmt.Errorf("media geometry: %w", err)
	}

	est, err := estimator.New(estimatorKind, points, media, opts.BlockSize)
	if err != nil {
		return nil, err
	}
	heuristic, err := cost.New(heuristicKind, opts.Weights)
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "SLTF components built",
		logger.KeyEstimator, estimatorKind.String(),
		logger.KeyHeuristic, heuristicKind.String(),
		logger.KeyMediaType, media.Name,
		logger.KeyWraps, len(points),
		logger.KeyLastBoundary, est.LastBlock(),
	)
	return algorithm.NewSLTF(est, heuristic)
}

// calibration reads the end-of-wrap positions, checks the table as the drive
// reported it and corrects the last boundary.
func (m *Manager) calibration(ctx context.Context) ([]rao.CalibrationPoint, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanDriveCalibrate)
	defer span.End()

	positions, err := m.drive.EndOfWrapPositions(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("read end of wrap positions: %w", err)
	}
	telemetry.SetAttributes(ctx, telemetry.Wraps(len(positions)))

	points := drive.CalibrationTable(positions)
	if err := geometry.ValidateCalibration(points); err != nil {
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("drive calibration: %w", err)
	}
	return geometry.ImproveLastWrapBoundary(points), nil
}

// QueryRAO returns the recommended order of jobs as batch indices.
func (m *Manager) QueryRAO(ctx context.Context, jobs []rao.Job) ([]int, error) {
	result, err := m.Query(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return result.Order, nil
}

// Query is QueryRAO returning the stage timings as well. A disabled manager
// returns the identity order without touching the drive.
func (m *Manager) Query(ctx context.Context, jobs []rao.Job) (rao.Result, error) {
	if !m.Enabled() {
		return rao.Result{Order: algorithm.Identity(len(jobs))}, nil
	}

	res, err := m.Resolve(ctx)
	if err != nil {
		return rao.Result{}, err
	}
	name := res.Algorithm.Name().String()

	lc := logger.FromContext(m.logContext(ctx)).WithAlgorithm(name)
	ctx = logger.WithContext(ctx, lc)
	ctx, span := telemetry.StartRAOSpan(ctx, m.params.VID, len(jobs), telemetry.Algorithm(name))
	defer span.End()

	start := time.Now()
	result, err := res.Algorithm.PerformRAO(ctx, jobs)
	elapsed := time.Since(start)
	if m.metrics != nil {
		m.metrics.ObserveQuery(name, len(jobs), elapsed, err)
	}
	if err != nil {
		var raoErr *rao.Error
		if errors.As(err, &raoErr) && raoErr.VID == "" {
			err = raoErr.WithVID(m.params.VID)
		}
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "RAO query failed", logger.Files(len(jobs)), logger.Err(err))
		return rao.Result{}, err
	}

	if m.metrics != nil {
		for _, stage := range result.Timings {
			m.metrics.ObserveStage(name, stage.Name, stage.Duration)
		}
	}

	logger.InfoCtx(ctx, "RAO computed",
		logger.Files(len(jobs)),
		logger.KeyTimings, result.Timings.String(),
		logger.DurationMs(float64(elapsed.Microseconds())/1000),
	)
	logger.DebugCtx(ctx, "Recall order", logger.FSeqs(recallOrder(jobs, result.Order)))
	return result, nil
}

// recallOrder lists the fseqs of jobs in order.
func recallOrder(jobs []rao.Job, order []int) []uint64 {
	fseqs := make([]uint64, len(order))
	for i, idx := range order {
		fseqs[i] = jobs[idx].FSeq()
	}
	return fseqs
}

// logContext attaches the mount log context unless ctx already carries one.
func (m *Manager) logContext(ctx context.Context) context.Context {
	if logger.FromContext(ctx) != nil {
		return ctx
	}
	return logger.WithContext(ctx, m.lc)
}

func (m *Manager) observeNative(files int, elapsed time.Duration, err error) {
	if m.metrics != nil {
		m.metrics.RecordNativeQuery(files, elapsed, err)
	}
}

func (m *Manager) recordResolution(algorithm string, err error) {
	if m.metrics != nil {
		m.metrics.RecordResolution(algorithm, err)
	}
}

// MountID returns the id of the mount session in logs.
func (m *Manager) MountID() string {
	return m.lc.MountID
}

// Package algorithm implements the RAO algorithm variants.
//
// The variant set is closed: Algorithm is a tagged value built by one of the
// New* constructors and PerformRAO switches on the tag.
package algorithm

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/dittotape/pkg/drive"
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/cost"
	"github.com/marmos91/dittotape/pkg/rao/estimator"
)

// Stage names reported in rao.Timings.
const (
	StageSort        = "sort"
	StageShuffle     = "shuffle"
	StageNativeQuery = "native_query"
	StagePositions   = "positions"
	StageTour        = "tour"
)

// segmentSpan is the number of blocks past the begin block declared as the
// end of a native segment. The drive only needs a rough extent.
const segmentSpan = 8

// NativeObserver is notified after each native drive query.
type NativeObserver func(files int, elapsed time.Duration, err error)

// Algorithm is one RAO algorithm variant.
//
// Linear, Native and SLTF values are immutable and safe for concurrent use.
// Random serializes access to its random source.
type Algorithm struct {
	name rao.AlgorithmName

	// random
	mu  sync.Mutex
	rng *rand.Rand

	// native
	drive    drive.Drive
	maxFiles int
	observer NativeObserver

	// sltf
	estimator *estimator.Estimator
	heuristic *cost.Heuristic
}

// NewLinear returns the algorithm ordering jobs by ascending fseq.
func NewLinear() *Algorithm {
	return &Algorithm{name: rao.AlgorithmLinear}
}

// NewRandom returns the algorithm shuffling jobs uniformly. A nil rng uses
// a randomly seeded source.
func NewRandom(rng *rand.Rand) *Algorithm {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Algorithm{name: rao.AlgorithmRandom, rng: rng}
}

// NewNative returns the algorithm delegating ordering to the drive, at most
// maxFiles files per query.
func NewNative(d drive.Drive, maxFiles int) (*Algorithm, error) {
	if d == nil {
		return nil, rao.NewConfigurationError("native RAO requires a drive")
	}
	if maxFiles < 1 {
		return nil, rao.NewConfigurationError("native RAO requires a positive file limit, got %d", maxFiles)
	}
	return &Algorithm{name: rao.AlgorithmNative, drive: d, maxFiles: maxFiles}, nil
}

// NewSLTF returns the Short Locate Time First algorithm.
func NewSLTF(est *estimator.Estimator, heuristic *cost.Heuristic) (*Algorithm, error) {
	if est == nil || heuristic == nil {
		return nil, rao.NewConfigurationError("SLTF requires a file position estimator and a cost heuristic")
	}
	return &Algorithm{name: rao.AlgorithmSLTF, estimator: est, heuristic: heuristic}, nil
}

// OnNativeQuery registers fn to be called after each native drive query.
// It has no effect on other variants and must be called before PerformRAO.
func (a *Algorithm) OnNativeQuery(fn NativeObserver) {
	a.observer = fn
}

// Name returns the variant name.
func (a *Algorithm) Name() rao.AlgorithmName {
	return a.name
}

// MaxFiles returns the per-query file limit of a native algorithm, 0 for
// other variants.
func (a *Algorithm) MaxFiles() int {
	return a.maxFiles
}

// PerformRAO returns a permutation of the indices of jobs.
//
// No partial order is ever returned: on error Result is empty. ctx is only
// consulted by the native variant, which blocks on the drive.
func (a *Algorithm) PerformRAO(ctx context.Context, jobs []rao.Job) (rao.Result, error) {
	switch a.name {
	case rao.AlgorithmLinear:
		return a.linear(jobs), nil
	case rao.AlgorithmRandom:
		return a.random(jobs), nil
	case rao.AlgorithmNative:
		return a.native(ctx, jobs)
	case rao.AlgorithmSLTF:
		return a.sltf(jobs)
	default:
		return rao.Result{}, rao.NewConfigurationError("unsupported RAO algorithm %q", a.name)
	}
}

// ============================================================================
// Linear
// ============================================================================

func (a *Algorithm) linear(jobs []rao.Job) rao.Result {
	var timings rao.Timings
	start := time.Now()

	order := Identity(len(jobs))
	slices.SortStableFunc(order, func(i, j int) int {
		return cmp.Compare(jobs[i].FSeq(), jobs[j].FSeq())
	})

	timings.Add(StageSort, start)
	return rao.Result{Order: order, Timings: timings}
}

// ============================================================================
// Random
// ============================================================================

func (a *Algorithm) random(jobs []rao.Job) rao.Result {
	var timings rao.Timings
	start := time.Now()

	a.mu.Lock()
	order := a.rng.Perm(len(jobs))
	a.mu.Unlock()

	timings.Add(StageShuffle, start)
	return rao.Result{Order: order, Timings: timings}
}

// ============================================================================
// Native
// ============================================================================

func (a *Algorithm) native(ctx context.Context, jobs []rao.Job) (rao.Result, error) {
	var timings rao.Timings
	start := time.Now()

	order := make([]int, 0, len(jobs))
	for first := 0; first < len(jobs); first += a.maxFiles {
		last := min(first+a.maxFiles, len(jobs))

		// a single leftover file needs no ordering
		if last-first == 1 {
			order = append(order, first)
			continue
		}

		chunk, err := a.queryChunk(ctx, jobs, first, last)
		if err != nil {
			return rao.Result{}, err
		}
		order = append(order, chunk...)
	}

	timings.Add(StageNativeQuery, start)
	return rao.Result{Order: order, Timings: timings}, nil
}

// queryChunk submits jobs[first:last] to the drive and maps the answer back
// to batch indices.
func (a *Algorithm) queryChunk(ctx context.Context, jobs []rao.Job, first, last int) ([]int, error) {
	segments := make([]drive.Segment, 0, last-first)
	for i := first; i < last; i++ {
		begin := jobs[i].BlockID()
		segments = append(segments, drive.Segment{
			Name:  strconv.Itoa(i),
			Begin: begin,
			End:   begin + segmentSpan,
		})
	}

	start := time.Now()
	answer, err := a.drive.QueryNativeOrder(ctx, segments, a.maxFiles)
	if a.observer != nil {
		a.observer(len(segments), time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("native RAO query for files %d..%d: %w", first, last-1, err)
	}

	if len(answer) != len(segments) {
		return nil, rao.NewNativeOrderError(
			"drive returned %d segments for a query of %d", len(answer), len(segments))
	}

	seen := make(map[int]struct{}, len(answer))
	order := make([]int, 0, len(answer))
	for _, seg := range answer {
		idx, err := strconv.Atoi(seg.Name)
		if err != nil || idx < first || idx >= last {
			return nil, rao.NewNativeOrderError("drive returned unknown segment %q", seg.Name)
		}
		if _, dup := seen[idx]; dup {
			return nil, rao.NewNativeOrderError("drive returned segment %q twice", seg.Name)
		}
		seen[idx] = struct{}{}
		order = append(order, idx)
	}
	return order, nil
}

// ============================================================================
// Short Locate Time First
// ============================================================================

func (a *Algorithm) sltf(jobs []rao.Job) (rao.Result, error) {
	var timings rao.Timings
	start := time.Now()

	current, err := a.estimator.AnchorPosition()
	if err != nil {
		return rao.Result{}, err
	}

	remaining := make(map[int]rao.FilePositionInfo, len(jobs))
	for i, job := range jobs {
		info, err := a.estimator.FilePosition(job)
		if err != nil {
			return rao.Result{}, fmt.Errorf("estimating position of fseq %d: %w", job.FSeq(), err)
		}
		remaining[i] = info
	}
	timings.Add(StagePositions, start)

	start = time.Now()
	order := make([]int, 0, len(jobs))
	for len(remaining) > 0 {
		best := -1
		var bestCost float64
		for idx, info := range remaining {
			c := a.heuristic.Cost(current, info)
			if best < 0 || c < bestCost || (c == bestCost && idx < best) {
				best, bestCost = idx, c
			}
		}

		order = append(order, best)
		current = remaining[best]
		delete(remaining, best)
	}
	timings.Add(StageTour, start)

	return rao.Result{Order: order, Timings: timings}, nil
}

// Identity returns the order [0, n).
func Identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

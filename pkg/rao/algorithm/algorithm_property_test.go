package algorithm

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/marmos91/dittotape/pkg/drive"
)

// TestPermutationProperty verifies every algorithm returns a bijection over
// [0, n) for any batch within the calibrated tape.
func TestPermutationProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	sltf := newTestSLTF(t)
	random := NewRandom(rand.New(rand.NewPCG(7, 11)))

	blocks := gen.SliceOf(gen.UInt64Range(0, 633521))

	properties.Property("linear returns a permutation", prop.ForAll(
		func(b []uint64) bool {
			res, err := NewLinear().PerformRAO(context.Background(), jobsAt(b...))
			return err == nil && isPermutation(res.Order, len(b))
		},
		blocks,
	))

	properties.Property("random returns a permutation", prop.ForAll(
		func(b []uint64) bool {
			res, err := random.PerformRAO(context.Background(), jobsAt(b...))
			return err == nil && isPermutation(res.Order, len(b))
		},
		blocks,
	))

	properties.Property("sltf returns a permutation", prop.ForAll(
		func(b []uint64) bool {
			res, err := sltf.PerformRAO(context.Background(), jobsAt(b...))
			return err == nil && isPermutation(res.Order, len(b))
		},
		blocks,
	))

	properties.Property("native returns a permutation for any chunk size", prop.ForAll(
		func(b []uint64, maxFiles int) bool {
			d := drive.NewSimulated(drive.WithNativeLimits(drive.UDSLimits{MaxSupported: uint16(maxFiles)}))
			alg, err := NewNative(d, maxFiles)
			if err != nil {
				return false
			}
			res, err := alg.PerformRAO(context.Background(), jobsAt(b...))
			return err == nil && isPermutation(res.Order, len(b))
		},
		blocks,
		gen.IntRange(1, 16),
	))

	properties.TestingRun(t)
}

// TestLinearOrderProperty verifies linear equals a stable sort by fseq.
func TestLinearOrderProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("linear is a stable sort by fseq", prop.ForAll(
		func(fseqs []uint64) bool {
			jobs := jobsWithFSeq(fseqs...)
			res, err := NewLinear().PerformRAO(context.Background(), jobs)
			if err != nil {
				return false
			}

			want := Identity(len(jobs))
			slices.SortStableFunc(want, func(i, j int) int {
				switch {
				case fseqs[i] < fseqs[j]:
					return -1
				case fseqs[i] > fseqs[j]:
					return 1
				default:
					return 0
				}
			})
			return slices.Equal(want, res.Order)
		},
		gen.SliceOf(gen.UInt64Range(0, 20)),
	))

	properties.TestingRun(t)
}

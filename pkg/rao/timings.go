package rao

import (
	"strings"
	"time"
)

// Stage is one timed step of an RAO computation.
type Stage struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Timings is the ordered list of stages measured during one RAO call.
// It is returned by value with the permutation.
type Timings []Stage

// Add appends a stage measured from start until now.
func (t *Timings) Add(name string, start time.Time) {
	*t = append(*t, Stage{Name: name, Duration: time.Since(start)})
}

// Total returns the sum of all stage durations.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, s := range t {
		total += s.Duration
	}
	return total
}

// String renders the timings as "stage=1.234ms stage=5ms".
func (t Timings) String() string {
	parts := make([]string, 0, len(t))
	for _, s := range t {
		parts = append(parts, s.Name+"="+s.Duration.String())
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of one RAO computation.
type Result struct {
	// Order is a permutation of the batch indices.
	Order []int

	// Timings are the stage durations measured while computing Order.
	Timings Timings
}

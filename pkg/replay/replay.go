// Package replay re-executes recorded operation traces against a chosen
// priority-queue variant and times the runs.
//
// The engine owns one slab pool and the two id tables the trace addresses
// queues and nodes through. Every iteration resets the pool in O(1) and
// dispatches the whole op stream again; iterations repeat until the
// measurement window is filled, which smooths scheduler noise out of the
// reported average.
package replay

import (
	"fmt"
	"sort"
	"time"

	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/trace"
)

// DefaultMinTime is the measurement window an Engine uses when none is
// configured: iterations repeat until this much run time has accumulated.
const DefaultMinTime = 2 * time.Second

// Result is the outcome of a timed replay.
type Result struct {
	// Iterations is the number of complete passes over the op stream.
	Iterations uint32

	// Elapsed is the run time summed over all iterations, excluding the
	// per-iteration reset.
	Elapsed time.Duration
}

// AvgMicros returns the average run time of one iteration in whole
// microseconds, the figure the measurement driver reports.
func (r Result) AvgMicros() uint64 {
	if r.Iterations == 0 {
		return 0
	}
	return uint64(r.Elapsed.Microseconds()) / uint64(r.Iterations)
}

// Engine replays traces.
type Engine struct {
	// MinTime is the measurement window; DefaultMinTime when zero.
	MinTime time.Duration
}

// Run replays tr against the named variant until the measurement window is
// filled, with at least one complete iteration.
func (e *Engine) Run(tr *trace.Trace, variant string) (Result, error) {
	build, ok := variants[variant]
	if !ok {
		return Result{}, fmt.Errorf("replay: unknown queue variant %q", variant)
	}

	min := e.MinTime
	if min == 0 {
		min = DefaultMinTime
	}

	run := build(tr.Header)
	defer run.shutdown()

	var result Result
	for result.Elapsed < min || result.Iterations == 0 {
		run.reset()
		result.Iterations++

		start := time.Now()
		for i := range tr.Ops {
			run.dispatch(&tr.Ops[i])
		}
		result.Elapsed += time.Since(start)
	}

	if debug.Enabled {
		debug.Log(nil, "run", "%s: %d iterations in %v", variant, result.Iterations, result.Elapsed)
	}

	return result, nil
}

// Variants lists the names of all registered queue variants, sorted.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

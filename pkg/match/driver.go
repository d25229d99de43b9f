// Package match is the driver that consumes a trajectory (or a batch of
// trajectories) and returns per-sample road-segment labels, wiring the
// spatial index, probability model, and Viterbi decoder together
// (spec.md §4.6). A Network is immutable once built and therefore
// trivially shareable across concurrent trajectories (spec.md §5); the
// driver runs one trajectory per worker in a bounded pool, grounded on
// the teacher's semaphore-channel concurrency limiter in its HTTP
// middleware.
package match

import (
	"context"
	"sync"

	"github.com/roadtrace/mapmatch/pkg/decode"
	"github.com/roadtrace/mapmatch/pkg/geo"
	"github.com/roadtrace/mapmatch/pkg/network"
)

// Sample is a single trajectory point: a position and its capture time.
// TimestampEpochSeconds carries through from the collaborator's parsed
// trajectory (spec.md §6.1) but the decoder itself is order-based, not
// time-delta-based, so it is not consulted during decoding.
type Sample struct {
	Point                 geo.Point2D
	TimestampEpochSeconds int64
}

// LabeledSample pairs a sample index with its emitted label — the
// "optional diagnostic view" in spec.md §6.2.
type LabeledSample struct {
	SampleIndex int
	Label       string
}

var statePool = sync.Pool{
	New: func() any { return decode.NewState() },
}

// Match runs the segmented Viterbi decoder over samples against net,
// returning one label per sample (spec.md §4.6). It never fails on
// well-typed input: unmatched samples are labeled decode.Unknown.
func Match(net *network.Network, samples []Sample) []string {
	points := make([]geo.Point2D, len(samples))
	for i, s := range samples {
		points[i] = s.Point
	}

	st := statePool.Get().(*decode.State)
	defer statePool.Put(st)

	return st.Decode(net, points)
}

// Diagnostic runs Match and returns the (sampleIndex, label) view.
func Diagnostic(net *network.Network, samples []Sample) []LabeledSample {
	labels := Match(net, samples)
	out := make([]LabeledSample, len(labels))
	for i, l := range labels {
		out[i] = LabeledSample{SampleIndex: i, Label: l}
	}
	return out
}

// MatchBatch runs Match over a batch of trajectories concurrently,
// bounded by maxWorkers in-flight at once (0 or negative means
// unbounded). Order in the returned slice matches the order of
// trajectories. Cancelling ctx stops launching new trajectories but does
// not interrupt ones already in progress, since the decoder itself has
// no suspension points (spec.md §5).
func MatchBatch(ctx context.Context, net *network.Network, trajectories [][]Sample, maxWorkers int) [][]string {
	results := make([][]string, len(trajectories))
	if len(trajectories) == 0 {
		return results
	}

	if maxWorkers <= 0 {
		maxWorkers = len(trajectories)
	}
	sem := make(chan struct{}, maxWorkers)

	var wg sync.WaitGroup
	for i, traj := range trajectories {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}

		wg.Add(1)
		go func(i int, traj []Sample) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = Match(net, traj)
		}(i, traj)
	}
	wg.Wait()

	return results
}

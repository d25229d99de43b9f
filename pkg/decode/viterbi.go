// Package decode implements the segmented Viterbi decoder (spec.md §4.5):
// a forward pass over sparse per-sample probability rows, re-anchored
// spatially whenever the running maximum collapses below MIN_PROB. The
// windowing lets a trajectory recover from a lossy stretch instead of
// failing the whole decode.
package decode

import (
	"errors"
	"sort"

	"github.com/roadtrace/mapmatch/pkg/geo"
	"github.com/roadtrace/mapmatch/pkg/network"
	"github.com/roadtrace/mapmatch/pkg/prob"
)

// Tunable constants baked into the reference semantics (spec.md §6.3).
const (
	MinProb      = 1e-3
	AnchorRadius = 300.0
)

// Unknown is the label emitted when a sample cannot be matched.
const Unknown = "UNKNOWN"

// ErrNetworkUnset is the panic value when Decode is called with a nil
// network. Calling match before build_network is a programming error,
// not a data error (spec.md §7), so it fails fast instead of returning
// an UNKNOWN-filled result the caller might mistake for real output.
var ErrNetworkUnset = errors.New("decode: network is unset, call network.Build before Decode")

// State holds the decoder's per-call scratch buffers. Reusing a State
// across trajectories (via a sync.Pool in pkg/match) reuses the slices
// that hold the per-sample row/backpointer maps, the same way the teacher
// pools QueryState across route queries; the maps themselves are
// allocated fresh for every sample.
type State struct {
	rows     []map[int]float64
	backptrs []map[int]int
}

// NewState allocates a decoder scratch State.
func NewState() *State { return &State{} }

func (st *State) reset() {
	st.rows = st.rows[:0]
	st.backptrs = st.backptrs[:0]
}

// Decode runs the segmented Viterbi decoder over samples against net,
// returning one label per sample drawn from net's segment names or
// Unknown (spec.md §4.6's match contract).
func (st *State) Decode(net *network.Network, samples []geo.Point2D) []string {
	if net == nil {
		panic(ErrNetworkUnset)
	}
	labels := make([]string, len(samples))
	if len(samples) == 0 {
		return labels
	}

	s := 0
	for s < len(samples) {
		st.reset()

		anchorRow := anchorAt(net, samples[s])
		if maxOf(anchorRow) < MinProb {
			labels[s] = Unknown
			s++
			continue
		}
		st.rows = append(st.rows, anchorRow)
		st.backptrs = append(st.backptrs, nil)

		e := s
		for t := s + 1; t < len(samples); t++ {
			prevRow := normalize(st.rows[len(st.rows)-1])

			newRow := make(map[int]float64)
			newBack := make(map[int]int)
			for _, i := range sortedKeys(prevRow) {
				pi := prevRow[i]
				if pi < MinProb {
					continue
				}
				adj := net.Adjacency(i)
				trans := prob.Transition(len(adj))
				for _, j := range adj {
					cand := pi * trans
					if cand > newRow[j] {
						newRow[j] = cand
						newBack[j] = i
					}
				}
			}

			applyObservation(net, samples[t], newRow)

			if maxOf(newRow) < MinProb {
				// Window closes at t-1; this sample's row/backptr are
				// discarded since it was never emitted.
				break
			}

			st.rows = append(st.rows, newRow)
			st.backptrs = append(st.backptrs, newBack)
			e = t
		}

		backtraceWindow(net, labels, s, e, st.rows, st.backptrs)
		s = e + 1
	}

	return labels
}

// anchorAt builds the initial sparse probability row for an anchor
// sample by querying the spatial index within AnchorRadius.
func anchorAt(net *network.Network, q geo.Point2D) map[int]float64 {
	row := make(map[int]float64)
	for _, i := range net.QueryRadius(q.X(), q.Y(), AnchorRadius) {
		seg := net.Segment(i)
		proj := geo.Project(seg.Start, seg.End, q)
		if proj.Degenerate {
			continue
		}
		if p := prob.Observation(proj.VerticalDist, proj.AlongTrackDist); p > 0 {
			row[i] = p
		}
	}
	return row
}

// applyObservation multiplies every entry of row above MinProb by the
// observation probability at sample q, in place. Entries at or below
// MinProb are dropped — per spec.md §4.5 they are "effectively 0" and
// skipped for efficiency rather than having observation applied.
func applyObservation(net *network.Network, q geo.Point2D, row map[int]float64) {
	for j, pj := range row {
		if pj <= MinProb {
			delete(row, j)
			continue
		}
		seg := net.Segment(j)
		proj := geo.Project(seg.Start, seg.End, q)
		if proj.Degenerate {
			row[j] = 0
			continue
		}
		row[j] = pj * prob.Observation(proj.VerticalDist, proj.AlongTrackDist)
	}
}

// normalize returns a copy of row scaled so its values sum to 1, leaving
// row itself untouched so the canonical (non-normalized) prob table
// stays correct for backtrace comparison.
func normalize(row map[int]float64) map[int]float64 {
	var sum float64
	for _, p := range row {
		sum += p
	}
	out := make(map[int]float64, len(row))
	if sum == 0 {
		return out
	}
	for i, p := range row {
		out[i] = p / sum
	}
	return out
}

func maxOf(row map[int]float64) float64 {
	best := 0.0
	for _, p := range row {
		if p > best {
			best = p
		}
	}
	return best
}

// backtraceWindow fills labels[s..e] from the decoded rows/backptrs for
// a window, per spec.md §4.5 step 4. A window of a single state (e == s,
// meaning the anchor itself cleared MIN_PROB but the forward pass could
// not extend past it — either because the very next sample terminated
// the window, or because the trajectory simply ends at s) still emits
// the anchor's own best label rather than Unknown: the anchor already
// passed the MIN_PROB gate in its own right, and S2 in spec.md §8 is
// explicit that an off-road neighbor must not retroactively invalidate
// it (see DESIGN.md).
func backtraceWindow(net *network.Network, labels []string, s, e int, rows []map[int]float64, backptrs []map[int]int) {
	if e == s {
		labels[s] = net.Segment(argmax(rows[0])).Name
		return
	}

	jStar := argmax(rows[len(rows)-1])
	labels[e] = net.Segment(jStar).Name

	for t := e; t >= s+1; t-- {
		k := t - s
		jPrev := backptrs[k][jStar]
		labels[t-1] = net.Segment(jPrev).Name
		jStar = jPrev
	}
}

// sortedKeys returns row's keys in ascending order, so map iteration
// never introduces nondeterminism into tie-breaking (spec.md §4.5).
func sortedKeys(row map[int]float64) []int {
	keys := make([]int, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// argmax returns the key with the largest value in row. Ties are broken
// by ascending key, matching the tie-break rule in spec.md §4.5 (first
// encountered wins, insertion order ascending by index).
func argmax(row map[int]float64) int {
	keys := sortedKeys(row)
	best := keys[0]
	bestVal := row[best]
	for _, k := range keys[1:] {
		if row[k] > bestVal {
			best = k
			bestVal = row[k]
		}
	}
	return best
}

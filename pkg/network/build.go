package network

import (
	"fmt"
	"math"
	"sort"

	"github.com/roadtrace/mapmatch/pkg/geo"
	"github.com/roadtrace/mapmatch/pkg/spatial"
)

// adjacencyResolution is the endpoint bucket size in meters (spec.md §4.3,
// §6.3 ADJACENCY_RESOLUTION). Tighter misses real junctions under GPS and
// projection noise; looser fuses parallel lanes into one junction.
const adjacencyResolution = 0.1

// PolylineInput is one named polyline from the collaborator's parsed
// network (spec.md §6.1). Build fragments it into consecutive 2-point
// segments named "<Name>_<index>" starting at 0; Name itself must already
// be globally unique across the input.
type PolylineInput struct {
	Name   string
	Points []geo.Point2D
}

// Network is an immutable, built road-network graph: a bijective
// name↔index segment table plus derived adjacency and a spatial index
// over segment start points.
type Network struct {
	segments   []Segment
	nameToIdx  map[string]int
	adjacency  [][]int // adjacency[i] is the sorted, deduplicated set of segment indices adjacent to i (includes i)
	spatialIdx *spatial.Index
}

// bucketKey quantizes a point to an integer grid cell at adjacencyResolution.
type bucketKey struct {
	x, y int64
}

func bucketOf(p geo.Point2D) bucketKey {
	return bucketKey{
		x: int64(math.Floor(p.X() / adjacencyResolution)),
		y: int64(math.Floor(p.Y() / adjacencyResolution)),
	}
}

// Build constructs a Network from an ordered list of named polylines.
// It fails fast on a duplicate segment name or a polyline with fewer
// than two points, matching build_network's contract in spec.md §4.6.
func Build(polylines []PolylineInput) (*Network, error) {
	var segments []Segment
	nameToIdx := make(map[string]int)

	for _, pl := range polylines {
		if len(pl.Points) < 2 {
			return nil, fmt.Errorf("%w: %q", ErrShortPolyline, pl.Name)
		}
		for i := 0; i < len(pl.Points)-1; i++ {
			name := fmt.Sprintf("%s_%d", pl.Name, i)
			if _, dup := nameToIdx[name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateSegment, name)
			}
			idx := len(segments)
			nameToIdx[name] = idx
			segments = append(segments, Segment{
				Name:  name,
				Start: pl.Points[i],
				End:   pl.Points[i+1],
			})
		}
	}

	// Bucket every endpoint, recording which segment indices land in it.
	buckets := make(map[bucketKey][]int)
	for i, s := range segments {
		for _, key := range []bucketKey{bucketOf(s.Start), bucketOf(s.End)} {
			buckets[key] = append(buckets[key], i)
		}
	}

	adjacency := make([][]int, len(segments))
	for i, s := range segments {
		seen := make(map[int]struct{})
		seen[i] = struct{}{}
		for _, key := range []bucketKey{bucketOf(s.Start), bucketOf(s.End)} {
			for _, j := range buckets[key] {
				seen[j] = struct{}{}
			}
		}
		adj := make([]int, 0, len(seen))
		for j := range seen {
			adj = append(adj, j)
		}
		sort.Ints(adj)
		adjacency[i] = adj
	}

	starts := make([]geo.Point2D, len(segments))
	for i, s := range segments {
		starts[i] = s.Start
	}

	return &Network{
		segments:   segments,
		nameToIdx:  nameToIdx,
		adjacency:  adjacency,
		spatialIdx: spatial.Build(starts),
	}, nil
}

// NumSegments returns the number of segments in the network.
func (n *Network) NumSegments() int { return len(n.segments) }

// Segment returns the segment at index i.
func (n *Network) Segment(i int) Segment { return n.segments[i] }

// IndexOf returns the segment index for a name, or -1 if unknown.
func (n *Network) IndexOf(name string) int {
	if i, ok := n.nameToIdx[name]; ok {
		return i
	}
	return -1
}

// Adjacency returns the sorted set of segment indices adjacent to i
// (always includes i itself).
func (n *Network) Adjacency(i int) []int { return n.adjacency[i] }

// QueryRadius returns the indices of segments whose start point lies
// within radius meters of (x, y).
func (n *Network) QueryRadius(x, y, radius float64) []int {
	return n.spatialIdx.Query(x, y, radius)
}

// Package spatial provides a radius-ball query over segment start points,
// backing the decoder's anchor-candidate search (spec.md §4.2). It wraps
// github.com/tidwall/rtree — a dependency the teacher repo's own go.mod
// names directly but never imports from any .go file (see DESIGN.md);
// this is where it finally earns its place.
package spatial

import (
	"math"

	"github.com/tidwall/rtree"

	"github.com/roadtrace/mapmatch/pkg/geo"
)

// Index answers "which segment indices start within R meters of this
// point" queries over a fixed set of start points.
type Index struct {
	tree   rtree.RTree[int]
	points []geo.Point2D // points[i] is the start point of segment index i
}

// Build constructs an Index over the given start points. points[i] is
// treated as the start point of segment index i.
func Build(points []geo.Point2D) *Index {
	idx := &Index{points: points}
	for i, p := range points {
		min := [2]float64{p.X(), p.Y()}
		max := [2]float64{p.X(), p.Y()}
		idx.tree.Insert(min, max, i)
	}
	return idx
}

// Query returns the indices of every start point within radius meters of
// (x, y), order unspecified.
func (idx *Index) Query(x, y, radius float64) []int {
	min := [2]float64{x - radius, y - radius}
	max := [2]float64{x + radius, y + radius}

	var out []int
	idx.tree.Search(min, max, func(_, _ [2]float64, i int) bool {
		p := idx.points[i]
		dx, dy := p.X()-x, p.Y()-y
		if math.Hypot(dx, dy) <= radius {
			out = append(out, i)
		}
		return true
	})
	return out
}

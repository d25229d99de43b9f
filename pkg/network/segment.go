// Package network builds and holds a directed road-network graph indexed
// for map-matching: a bijective name↔index segment table, an
// endpoint-bucketed adjacency map, and a spatial index over segment start
// points (spec.md §4.3).
package network

import (
	"errors"

	"github.com/roadtrace/mapmatch/pkg/geo"
)

// Segment is an immutable directed piece of a road, named uniquely across
// the whole network.
type Segment struct {
	Name  string
	Start geo.Point2D
	End   geo.Point2D
}

// ErrDuplicateSegment is returned by Build when two segments share a name.
// The offending name is attached by wrapping: errors.Is matches this
// sentinel; the wrapped message carries the name.
var ErrDuplicateSegment = errors.New("network: duplicate segment name")

// ErrShortPolyline is returned by Build when a polyline has fewer than
// two points, so it cannot be fragmented into any segment.
var ErrShortPolyline = errors.New("network: polyline has fewer than 2 points")

// Package geo provides the planar geometry primitives the map-matching
// engine projects GPS samples through. All inputs are assumed to already
// be in a shared ENU tangent-plane frame (meters); geodetic conversion is
// an external collaborator's concern, not this package's.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Point2D is a planar (x, y) coordinate in meters.
type Point2D = orb.Point

// degenerateEpsilon is the length below which a segment or offset is
// treated as a point, matching the reference semantics' 1e-3 m tolerance.
const degenerateEpsilon = 1e-3

// Projection is the result of projecting a query point onto a directed
// segment.
type Projection struct {
	// VerticalDist is the perpendicular distance from Q to the infinite
	// line through the segment.
	VerticalDist float64
	// AlongTrackDist is the overshoot past the segment's endpoints; zero
	// when the foot of the perpendicular falls within [A, B].
	AlongTrackDist float64
	// Degenerate is true when the segment has near-zero length and the
	// projection is meaningless; callers treat this as zero probability.
	Degenerate bool
}

// Project computes the vertical and along-track distances from Q to the
// directed segment (A, B), per spec.md §4.1.
func Project(a, b, q Point2D) Projection {
	ux, uy := b.X()-a.X(), b.Y()-a.Y()
	ulen := hypot(ux, uy)
	if ulen < degenerateEpsilon {
		return Projection{Degenerate: true}
	}

	vx, vy := q.X()-a.X(), q.Y()-a.Y()
	if hypot(vx, vy) < degenerateEpsilon {
		return Projection{}
	}

	r := (ux*vx + uy*vy) / (ux*ux + uy*uy)

	fx, fy := a.X()+r*ux, a.Y()+r*uy // foot of perpendicular on the infinite line
	vertical := hypot(q.X()-fx, q.Y()-fy)

	// Closest point on the bounded segment.
	cx, cy := fx, fy
	switch {
	case r < 0:
		cx, cy = a.X(), a.Y()
	case r > 1:
		cx, cy = b.X(), b.Y()
	}
	along := hypot(cx-fx, cy-fy)

	return Projection{VerticalDist: vertical, AlongTrackDist: along}
}

func hypot(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

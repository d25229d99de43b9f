// Package ingest decodes the collaborator's pre-parsed JSON envelope of
// road polylines and trajectory samples. It performs no geometry
// parsing of its own: the collaborator has already converted KML/OSM
// and projected coordinates into a flat (name, polyline) and
// (point, timestamp) representation, and this package only decodes
// that JSON into the types pkg/network and pkg/match expect.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roadtrace/mapmatch/pkg/geo"
	"github.com/roadtrace/mapmatch/pkg/match"
	"github.com/roadtrace/mapmatch/pkg/network"
)

// PointJSON is a projected 2D point in JSON.
type PointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p PointJSON) toPoint2D() geo.Point2D { return geo.Point2D{p.X, p.Y} }

// PolylineJSON is one named road polyline, already projected to the
// planar coordinate system the core operates in.
type PolylineJSON struct {
	Name   string      `json:"name"`
	Points []PointJSON `json:"points"`
}

// SampleJSON is one trajectory sample: a projected point and its
// capture time.
type SampleJSON struct {
	Point                 PointJSON `json:"point"`
	TimestampEpochSeconds int64     `json:"timestamp_epoch_seconds"`
}

// DecodePolylines reads a JSON array of PolylineJSON from r and converts
// it to network.PolylineInput, the shape network.Build expects.
func DecodePolylines(r io.Reader) ([]network.PolylineInput, error) {
	var raw []PolylineJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("ingest: decode polylines: %w", err)
	}

	out := make([]network.PolylineInput, len(raw))
	for i, p := range raw {
		pts := make([]geo.Point2D, len(p.Points))
		for j, pt := range p.Points {
			pts[j] = pt.toPoint2D()
		}
		out[i] = network.PolylineInput{Name: p.Name, Points: pts}
	}
	return out, nil
}

// DecodeTrajectory reads a JSON array of SampleJSON from r and converts
// it to match.Sample, the shape match.Match expects.
func DecodeTrajectory(r io.Reader) ([]match.Sample, error) {
	var raw []SampleJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("ingest: decode trajectory: %w", err)
	}
	return SamplesToMatch(raw), nil
}

// SamplesToMatch converts already-decoded SampleJSON values to
// match.Sample, for callers (such as the HTTP API) that decode the
// request body themselves.
func SamplesToMatch(raw []SampleJSON) []match.Sample {
	out := make([]match.Sample, len(raw))
	for i, s := range raw {
		out[i] = match.Sample{
			Point:                 s.Point.toPoint2D(),
			TimestampEpochSeconds: s.TimestampEpochSeconds,
		}
	}
	return out
}

package network

import (
	"errors"
	"testing"

	"github.com/roadtrace/mapmatch/pkg/geo"
)

func TestBuild_FragmentsPolylineIntoNamedSegments(t *testing.T) {
	n, err := Build([]PolylineInput{
		{Name: "A", Points: []geo.Point2D{{0, 0}, {100, 0}, {200, 0}}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n.NumSegments() != 2 {
		t.Fatalf("NumSegments = %d, want 2", n.NumSegments())
	}
	if n.IndexOf("A_0") != 0 || n.IndexOf("A_1") != 1 {
		t.Fatalf("unexpected index mapping")
	}
	if n.IndexOf("missing") != -1 {
		t.Fatalf("IndexOf(missing) = %d, want -1", n.IndexOf("missing"))
	}
}

func TestBuild_AdjacentSegmentsShareEndpoint(t *testing.T) {
	n, err := Build([]PolylineInput{
		{Name: "A", Points: []geo.Point2D{{0, 0}, {100, 0}, {200, 0}}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a0, a1 := n.IndexOf("A_0"), n.IndexOf("A_1")
	adjA0 := n.Adjacency(a0)
	adjA1 := n.Adjacency(a1)
	if !containsInt(adjA0, a0) || !containsInt(adjA0, a1) {
		t.Errorf("adjacency[A_0] = %v, want to contain A_0 and A_1", adjA0)
	}
	if !containsInt(adjA1, a0) || !containsInt(adjA1, a1) {
		t.Errorf("adjacency[A_1] = %v, want to contain A_0 and A_1", adjA1)
	}
}

func TestBuild_AdjacencySymmetry(t *testing.T) {
	n, err := Build([]PolylineInput{
		{Name: "A", Points: []geo.Point2D{{0, 0}, {100, 0}}},
		{Name: "B", Points: []geo.Point2D{{100, 0}, {100, 100}}},
		{Name: "C", Points: []geo.Point2D{{500, 500}, {600, 500}}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < n.NumSegments(); i++ {
		for _, j := range n.Adjacency(i) {
			if !containsInt(n.Adjacency(j), i) {
				t.Errorf("adjacency not symmetric: %d in adj[%d] but %d not in adj[%d]", j, i, i, j)
			}
		}
	}
}

func TestBuild_DuplicateSegmentName(t *testing.T) {
	_, err := Build([]PolylineInput{
		{Name: "A", Points: []geo.Point2D{{0, 0}, {1, 0}}},
		{Name: "A", Points: []geo.Point2D{{0, 0}, {1, 0}}},
	})
	if !errors.Is(err, ErrDuplicateSegment) {
		t.Fatalf("Build err = %v, want ErrDuplicateSegment", err)
	}
}

func TestBuild_ShortPolyline(t *testing.T) {
	_, err := Build([]PolylineInput{
		{Name: "Z", Points: []geo.Point2D{{5, 5}}},
	})
	if !errors.Is(err, ErrShortPolyline) {
		t.Fatalf("Build err = %v, want ErrShortPolyline", err)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	n, err := Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n.NumSegments() != 0 {
		t.Fatalf("NumSegments = %d, want 0", n.NumSegments())
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

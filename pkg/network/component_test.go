package network

import (
	"testing"

	"github.com/roadtrace/mapmatch/pkg/geo"
)

func TestComponents_TwoDisjointNetworks(t *testing.T) {
	n, err := Build([]PolylineInput{
		{Name: "A", Points: []geo.Point2D{{0, 0}, {100, 0}, {200, 0}}},
		{Name: "B", Points: []geo.Point2D{{10000, 10000}, {10100, 10000}}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	report := n.Components()
	if report.NumComponents != 2 {
		t.Fatalf("NumComponents = %d, want 2", report.NumComponents)
	}
	if report.LargestComponentSize != 2 {
		t.Fatalf("LargestComponentSize = %d, want 2", report.LargestComponentSize)
	}
}

func TestComponents_Empty(t *testing.T) {
	n, err := Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	report := n.Components()
	if report.NumComponents != 0 || report.LargestComponentSize != 0 {
		t.Fatalf("unexpected report for empty network: %+v", report)
	}
}

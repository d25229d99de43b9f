package decode

import (
	"reflect"
	"testing"

	"github.com/roadtrace/mapmatch/pkg/geo"
	"github.com/roadtrace/mapmatch/pkg/network"
)

func buildNetwork(t *testing.T, polylines ...network.PolylineInput) *network.Network {
	t.Helper()
	n, err := network.Build(polylines)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return n
}

func pts(xy ...float64) []geo.Point2D {
	out := make([]geo.Point2D, 0, len(xy)/2)
	for i := 0; i < len(xy); i += 2 {
		out = append(out, geo.Point2D{xy[i], xy[i+1]})
	}
	return out
}

// S1 — Single segment, on-road.
func TestDecode_S1_SingleSegmentOnRoad(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "R", Points: pts(0, 0, 100, 0)})
	got := NewState().Decode(n, pts(10, 0, 50, 0, 90, 0))
	want := []string{"R_0", "R_0", "R_0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// S2 — Off-road sample.
func TestDecode_S2_OffRoadSample(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "R", Points: pts(0, 0, 100, 0)})
	got := NewState().Decode(n, pts(10, 0, 10, 100, 90, 0))
	want := []string{"R_0", "UNKNOWN", "R_0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// S3 — Two adjacent segments.
func TestDecode_S3_TwoAdjacentSegments(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "A", Points: pts(0, 0, 100, 0, 200, 0)})
	got := NewState().Decode(n, pts(10, 0, 90, 0, 110, 0, 190, 0))
	want := []string{"A_0", "A_0", "A_1", "A_1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// S4 — Degenerate segment ignored.
func TestDecode_S4_DegenerateSegmentIgnored(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "Z", Points: pts(5, 5, 5, 5)})
	got := NewState().Decode(n, pts(5, 5))
	want := []string{"UNKNOWN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// S5 — Anchor radius exceeded.
func TestDecode_S5_AnchorRadiusExceeded(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "R", Points: pts(0, 0, 100, 0)})
	got := NewState().Decode(n, pts(1000, 0))
	want := []string{"UNKNOWN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// S6 — Window re-anchor across a no-road gap between two disjoint networks.
func TestDecode_S6_WindowReanchor(t *testing.T) {
	n := buildNetwork(t,
		network.PolylineInput{Name: "R", Points: pts(0, 0, 100, 0)},
		network.PolylineInput{Name: "Q", Points: pts(10000, 10000, 10100, 10000)},
	)
	got := NewState().Decode(n, pts(10, 0, 90, 0, 5000, 5000, 10010, 10000, 10090, 10000))
	want := []string{"R_0", "R_0", "UNKNOWN", "Q_0", "Q_0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecode_EmptyAndSingleSample(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "R", Points: pts(0, 0, 100, 0)})

	if got := NewState().Decode(n, nil); len(got) != 0 {
		t.Fatalf("Decode(nil) = %v, want empty", got)
	}

	got := NewState().Decode(n, pts(10, 0))
	if len(got) != 1 {
		t.Fatalf("Decode(single) length = %d, want 1", len(got))
	}
}

func TestDecode_LabelsEveryLabelValidOrUnknown(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "A", Points: pts(0, 0, 100, 0, 200, 0)})
	samples := pts(10, 0, 90, 0, 110, 0, 190, 0, 5000, 5000, 110, 0)
	labels := NewState().Decode(n, samples)
	if len(labels) != len(samples) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(samples))
	}
	for _, l := range labels {
		if l != Unknown && n.IndexOf(l) == -1 {
			t.Errorf("label %q is neither Unknown nor a network segment name", l)
		}
	}
}

func TestDecode_NilNetworkPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Decode(nil network) did not panic")
		}
		if err, ok := r.(error); !ok || err != ErrNetworkUnset {
			t.Fatalf("recovered value = %v, want ErrNetworkUnset", r)
		}
	}()
	NewState().Decode(nil, pts(0, 0))
}

func TestDecode_Deterministic(t *testing.T) {
	n := buildNetwork(t, network.PolylineInput{Name: "A", Points: pts(0, 0, 100, 0, 200, 0)})
	samples := pts(10, 0, 90, 0, 110, 0, 190, 0)
	first := NewState().Decode(n, samples)
	for i := 0; i < 5; i++ {
		again := NewState().Decode(n, samples)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("nondeterministic decode: %v vs %v", first, again)
		}
	}
}

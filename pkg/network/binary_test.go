package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roadtrace/mapmatch/pkg/geo"
)

func TestWriteReadBinary_RoundTrip(t *testing.T) {
	n, err := Build([]PolylineInput{
		{Name: "A", Points: []geo.Point2D{{0, 0}, {100, 0}, {200, 0}}},
		{Name: "B", Points: []geo.Point2D{{200, 0}, {200, 100}}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	path := filepath.Join(t.TempDir(), "network.bin")
	if err := WriteBinary(path, n); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	loaded, err := ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if loaded.NumSegments() != n.NumSegments() {
		t.Fatalf("NumSegments = %d, want %d", loaded.NumSegments(), n.NumSegments())
	}
	for i := 0; i < n.NumSegments(); i++ {
		want := n.Segment(i)
		got := loaded.Segment(i)
		if got.Name != want.Name || got.Start != want.Start || got.End != want.End {
			t.Errorf("segment %d = %+v, want %+v", i, got, want)
		}
		if !equalIntSets(loaded.Adjacency(i), n.Adjacency(i)) {
			t.Errorf("adjacency[%d] = %v, want %v", i, loaded.Adjacency(i), n.Adjacency(i))
		}
	}

	// The spatial index should be rebuilt and queryable after load.
	results := loaded.QueryRadius(0, 0, 10)
	if len(results) == 0 {
		t.Errorf("QueryRadius after load returned no results")
	}
}

func TestReadBinary_ChecksumMismatch(t *testing.T) {
	n, err := Build([]PolylineInput{{Name: "A", Points: []geo.Point2D{{0, 0}, {1, 0}}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	path := filepath.Join(t.TempDir(), "network.bin")
	if err := WriteBinary(path, n); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	data[0] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write corrupted: %v", err)
	}

	if _, err := ReadBinary(path); err == nil {
		t.Fatalf("ReadBinary with corrupted data: want error, got nil")
	}
}

func equalIntSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

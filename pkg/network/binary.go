package network

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/roadtrace/mapmatch/pkg/geo"
	"github.com/roadtrace/mapmatch/pkg/spatial"
)

const (
	magicBytes   = "RDMATCH\x00"
	binaryFormat = uint32(1)
)

// fileHeader is the binary header written at the start of a persisted
// network, grounded on the teacher's CH graph binary header.
type fileHeader struct {
	Magic       [8]byte
	Version     uint32
	NumSegments uint32
	NumAdjPairs uint32
}

// WriteBinary serializes a built Network to path: a flat, little-endian
// format with a CRC32 trailer, so a caller can persist a built network
// once and reload it across process restarts instead of re-fragmenting
// and re-bucketing the source polylines every time.
func WriteBinary(path string, n *Network) (err error) {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	hash := crc32.NewIEEE()

	var numAdjPairs uint32
	for _, adj := range n.adjacency {
		numAdjPairs += uint32(len(adj))
	}

	hdr := fileHeader{
		Version:     binaryFormat,
		NumSegments: uint32(len(n.segments)),
		NumAdjPairs: numAdjPairs,
	}
	copy(hdr.Magic[:], magicBytes)

	buffered := bufio.NewWriter(f)
	hw := io.MultiWriter(buffered, hash)

	if err = binary.Write(hw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range n.segments {
		if err = writeSegment(hw, s); err != nil {
			return fmt.Errorf("write segment %q: %w", s.Name, err)
		}
	}
	for i, adj := range n.adjacency {
		for _, j := range adj {
			if err = binary.Write(hw, binary.LittleEndian, [2]uint32{uint32(i), uint32(j)}); err != nil {
				return fmt.Errorf("write adjacency entry: %w", err)
			}
		}
	}
	if err = binary.Write(hw, binary.LittleEndian, hash.Sum32()); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	if err = buffered.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func writeSegment(w io.Writer, s Segment) error {
	nameBytes := []byte(s.Name)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(nameBytes))); err != nil {
		return err
	}
	if _, err := w.Write(nameBytes); err != nil {
		return err
	}
	coords := [4]float64{s.Start.X(), s.Start.Y(), s.End.X(), s.End.Y()}
	return binary.Write(w, binary.LittleEndian, &coords)
}

// ReadBinary loads a Network previously written by WriteBinary. The
// spatial index is rebuilt from the deserialized start points rather
// than persisted directly, keeping the on-disk format independent of the
// R-tree library's internal layout.
func ReadBinary(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("truncated network file")
	}
	checksum := binary.LittleEndian.Uint32(data[len(data)-4:])
	body := data[:len(data)-4]
	if crc32.ChecksumIEEE(body) != checksum {
		return nil, fmt.Errorf("network file checksum mismatch")
	}

	r := newByteReader(body)

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("not a network binary file")
	}
	if hdr.Version != binaryFormat {
		return nil, fmt.Errorf("unsupported network binary version %d", hdr.Version)
	}

	segments := make([]Segment, hdr.NumSegments)
	nameToIdx := make(map[string]int, hdr.NumSegments)
	for i := range segments {
		s, err := readSegment(r)
		if err != nil {
			return nil, fmt.Errorf("read segment %d: %w", i, err)
		}
		segments[i] = s
		nameToIdx[s.Name] = i
	}

	adjacency := make([][]int, hdr.NumSegments)
	for k := uint32(0); k < hdr.NumAdjPairs; k++ {
		var pair [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &pair); err != nil {
			return nil, fmt.Errorf("read adjacency entry %d: %w", k, err)
		}
		adjacency[pair[0]] = append(adjacency[pair[0]], int(pair[1]))
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

func readSegment(r io.Reader) (Segment, error) {
	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return Segment{}, err
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return Segment{}, err
	}
	var coords [4]float64
	if err := binary.Read(r, binary.LittleEndian, &coords); err != nil {
		return Segment{}, err
	}
	return Segment{
		Name:  string(nameBytes),
		Start: geo.Point2D{coords[0], coords[1]},
		End:   geo.Point2D{coords[2], coords[3]},
	}, nil
}

// byteReader is a minimal io.Reader over an in-memory slice, avoiding a
// bytes.Reader import purely for naming symmetry with the write path.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

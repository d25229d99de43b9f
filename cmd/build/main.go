// Command build turns a JSON file of road polylines (the collaborator's
// pre-parsed representation) into a binary network file ready for
// cmd/matchserver or cmd/match to load.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/roadtrace/mapmatch/pkg/ingest"
	"github.com/roadtrace/mapmatch/pkg/network"
)

func main() {
	input := flag.String("input", "", "Path to JSON file of polylines")
	output := flag.String("output", "network.bin", "Output binary network file path")
	flag.Parse()

	if *input == "" {
		log.Fatal("Usage: build --input <polylines.json> [--output network.bin]")
	}

	start := time.Now()

	log.Println("Reading polylines...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	polylines, err := ingest.DecodePolylines(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to decode polylines: %v", err)
	}
	log.Printf("Read %d polylines", len(polylines))

	log.Println("Building network...")
	net, err := network.Build(polylines)
	if err != nil {
		log.Fatalf("Failed to build network: %v", err)
	}
	log.Printf("Network: %d segments", net.NumSegments())

	log.Println("Checking connectivity...")
	report := net.Components()
	share := 0.0
	if n := net.NumSegments(); n > 0 {
		share = float64(report.LargestComponentSize) / float64(n) * 100
	}
	log.Printf("Components: %d total, largest covers %.1f%% of segments", report.NumComponents, share)

	log.Printf("Writing binary to %s...", *output)
	if err := network.WriteBinary(*output, net); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f KB)", elapsed.Round(time.Millisecond), *output, float64(info.Size())/1024)
}

// Command match runs the decoder once against a JSON trajectory file
// and prints the resulting label sequence, for offline inspection
// without standing up the HTTP server.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/roadtrace/mapmatch/pkg/ingest"
	"github.com/roadtrace/mapmatch/pkg/match"
	"github.com/roadtrace/mapmatch/pkg/network"
)

func main() {
	networkPath := flag.String("network", "network.bin", "Path to built network binary")
	trajectoryPath := flag.String("trajectory", "", "Path to JSON trajectory file")
	flag.Parse()

	if *trajectoryPath == "" {
		log.Fatal("Usage: match --network <network.bin> --trajectory <trajectory.json>")
	}

	start := time.Now()

	log.Printf("Loading network from %s...", *networkPath)
	net, err := network.ReadBinary(*networkPath)
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}
	log.Printf("Loaded: %d segments", net.NumSegments())

	log.Printf("Reading trajectory from %s...", *trajectoryPath)
	f, err := os.Open(*trajectoryPath)
	if err != nil {
		log.Fatalf("Failed to open trajectory file: %v", err)
	}
	samples, err := ingest.DecodeTrajectory(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to decode trajectory: %v", err)
	}
	log.Printf("Read %d samples", len(samples))

	log.Println("Matching...")
	labels := match.Match(net, samples)
	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))

	if err := json.NewEncoder(os.Stdout).Encode(labels); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

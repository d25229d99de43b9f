// Command matchserver loads a binary road network and serves the
// HTTP map-matching API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/roadtrace/mapmatch/pkg/api"
	"github.com/roadtrace/mapmatch/pkg/network"
)

func main() {
	networkPath := flag.String("network", "network.bin", "Path to built network binary")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	log.Printf("Loading network from %s...", *networkPath)
	net, err := network.ReadBinary(*networkPath)
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}
	log.Printf("Loaded: %d segments", net.NumSegments())
	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(net)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

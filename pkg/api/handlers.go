package api

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/roadtrace/mapmatch/pkg/ingest"
	"github.com/roadtrace/mapmatch/pkg/match"
	"github.com/roadtrace/mapmatch/pkg/network"
)

// Handlers holds the HTTP handlers and their dependencies. A Handlers
// is built once from a loaded Network and served for the process
// lifetime; the network is never mutated after load.
type Handlers struct {
	net   *network.Network
	stats StatsResponse
}

// NewHandlers creates handlers bound to net, precomputing the stats
// response once at startup rather than on every request.
func NewHandlers(net *network.Network) *Handlers {
	report := net.Components()
	share := 0.0
	if n := net.NumSegments(); n > 0 {
		share = float64(report.LargestComponentSize) / float64(n)
	}
	return &Handlers{
		net: net,
		stats: StatsResponse{
			NumSegments:           net.NumSegments(),
			NumComponents:         report.NumComponents,
			LargestComponentShare: share,
		},
	}
}

// HandleMatch handles POST /api/v1/match.
func (h *Handlers) HandleMatch(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "empty_trajectory", "samples")
		return
	}

	samples := ingest.SamplesToMatch(req.Samples)
	labels := match.Match(h.net, samples)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MatchResponse{Labels: labels})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}

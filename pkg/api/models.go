package api

import "github.com/roadtrace/mapmatch/pkg/ingest"

// MatchRequest is the JSON body for POST /api/v1/match.
type MatchRequest struct {
	Samples []ingest.SampleJSON `json:"samples"`
}

// MatchResponse is the JSON response for a successful match.
type MatchResponse struct {
	Labels []string `json:"labels"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumSegments           int     `json:"num_segments"`
	NumComponents         int     `json:"num_components"`
	LargestComponentShare float64 `json:"largest_component_share"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

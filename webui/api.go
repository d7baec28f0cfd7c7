// api.go implements the read-only API endpoints: health and stats.
package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"finreport_backend/metrics"
)

// CacheReporter is what the API needs from the cache store. A nil
// reporter means the service runs without a cache.
type CacheReporter interface {
	// Ping verifies the cache store is reachable
	Ping() error
	// Counts returns live row counts (extractions, analyses)
	Counts(ctx context.Context) (int64, int64, error)
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// StatsResponse is the JSON body of the stats endpoint.
type StatsResponse struct {
	Runs       metrics.RunMetrics  `json:"runs"`
	RecentRuns []metrics.RunRecord `json:"recent_runs"`
	System     metrics.SystemStatus `json:"system"`
	Cache      *CacheStats         `json:"cache,omitempty"`
}

// CacheStats reports live cache row counts.
type CacheStats struct {
	Extractions int64 `json:"extractions"`
	Analyses    int64 `json:"analyses"`
}

// API serves the health and stats endpoints.
type API struct {
	collector metrics.Collector
	cache     CacheReporter

	// RecentRunLimit caps the recent_runs list (default 20)
	RecentRunLimit int
}

// NewAPI creates the API handler set. cache may be nil.
func NewAPI(collector metrics.Collector, cache CacheReporter) *API {
	return &API{
		collector:      collector,
		cache:          cache,
		RecentRunLimit: 20,
	}
}

// HandleHealth serves GET /api/health.
func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := api.collector.GetSystemStatus()

	resp := HealthResponse{
		Status:  status.Health,
		Version: status.Version,
		Uptime:  status.Uptime.Round(time.Second).String(),
		Checks:  map[string]string{},
	}

	code := http.StatusOK
	if api.cache != nil {
		if err := api.cache.Ping(); err != nil {
			resp.Checks["cache"] = "unavailable"
			resp.Status = metrics.SystemHealthError
			code = http.StatusServiceUnavailable
		} else {
			resp.Checks["cache"] = "ok"
		}
	}

	writeJSON(w, code, resp)
}

// HandleStats serves GET /api/stats.
func (api *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Runs:       api.collector.GetRunMetrics(),
		RecentRuns: api.collector.GetRecentRuns(api.RecentRunLimit),
		System:     api.collector.GetSystemStatus(),
	}

	if api.cache != nil {
		extractions, analyses, err := api.cache.Counts(r.Context())
		if err == nil {
			resp.Cache = &CacheStats{Extractions: extractions, Analyses: analyses}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/countygis/parcels/pkg/realtime"
	"github.com/countygis/parcels/pkg/search"
	"github.com/countygis/parcels/pkg/version"
)

func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	response := IndexResponse{
		Name:    "parcels",
		Version: version.APIVersion(),
		Endpoints: map[string]string{
			"GET /search":                        "Search parcels by owner, parcel id or address (q, limit, counties, fields, near)",
			"GET /stats":                         "Dataset statistics",
			"GET /health":                        "Health check",
			"GET /events":                        "WebSocket stream of dataset events",
			"POST /reload":                       "Reload the search index from the snapshot",
			"POST /internal/reload-search-index": "Reload the search index after an external rebuild",
			"POST /generate-search-index":        "Regenerate the snapshot from county exports and reload",
		},
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	// Parse search parameters
	params, err := search.ParseSearchParams(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid search parameters", err.Error())
		return
	}

	// API requires a query parameter
	if strings.TrimSpace(params.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	results, err := s.searcher.Search(params)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	// Convert to API response format
	searchResults := make([]SearchResult, len(results.Hits))
	for i, hit := range results.Hits {
		searchResults[i] = SearchResult{Record: *hit.Record, Score: hit.Score}
	}

	response := SearchResponse{
		Query:        results.Query,
		Results:      searchResults,
		TotalResults: results.TotalCount,
		SearchTime:   fmt.Sprintf("%.3fs", results.Duration.Seconds()),
		Generation:   results.Generation,
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.searcher.Stats())
}

func (s *Server) HandleReload(w http.ResponseWriter, r *http.Request) {
	s.reload(w, r, "Search index reloaded")
}

// HandleInternalReload is called by the ingestion pipeline once it has
// written a new snapshot.
func (s *Server) HandleInternalReload(w http.ResponseWriter, r *http.Request) {
	s.reload(w, r, "Search index reloaded after rebuild")
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request, message string) {
	total, err := s.searcher.Reload(r.Context())
	if err != nil {
		s.logger.Errorf("reload requested by %s failed: %v", r.RemoteAddr, err)
		s.writeError(w, http.StatusInternalServerError, "Reload failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ReloadResponse{
		Status:       "success",
		Message:      message,
		TotalEntries: total,
		Timestamp:    time.Now().UTC(),
	})
}

func (s *Server) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Generator not configured", "No county source directory is configured")
		return
	}

	result, err := s.generator.Run(r.Context())
	if err != nil {
		s.logger.Errorf("snapshot generation failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Generation failed", err.Error())
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(realtime.GenerateEvent{
			Output:   result.Output,
			Total:    result.Total,
			Counties: len(result.Counties),
			Finished: time.Now().UTC(),
		})
	}

	total, err := s.searcher.Reload(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Reload failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, GenerateResponse{
		Status:       "success",
		Message:      fmt.Sprintf("Search index generated with %d records", result.Total),
		Generator:    result,
		TotalEntries: total,
		Timestamp:    time.Now().UTC(),
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.searcher.Stats()
	health := HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now().UTC(),
		Version:      version.APIVersion(),
		TotalEntries: stats.TotalEntries,
		Generation:   stats.Generation,
	}

	s.writeJSON(w, http.StatusOK, health)
}

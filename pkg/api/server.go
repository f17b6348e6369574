package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/countygis/parcels/pkg/generate"
	"github.com/countygis/parcels/pkg/log"
	"github.com/countygis/parcels/pkg/realtime"
	"github.com/countygis/parcels/pkg/search"
)

// Searcher is the search backend served by the API.
type Searcher interface {
	Search(params search.SearchParams) (*search.SearchResults, error)
	Stats() search.Stats
	Reload(ctx context.Context) (int, error)
}

// Generator rebuilds the snapshot from the county exports.
type Generator interface {
	Run(ctx context.Context) (*generate.Result, error)
}

type Server struct {
	searcher  Searcher
	generator Generator
	hub       *realtime.Hub
	logger    *log.Logger
}

// NewServer creates an API server. generator and hub may be nil, in which
// case the generate and event stream endpoints answer 503.
func NewServer(searcher Searcher, generator Generator, hub *realtime.Hub) *Server {
	return &Server{
		searcher:  searcher,
		generator: generator,
		hub:       hub,
		logger:    log.ForService("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the complete HTTP handler: routes plus CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return CorsMiddleware(mux)
}

package api

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// JSON routes are gzip compressed when the client accepts it
	gz := func(h http.HandlerFunc) http.Handler { return gzhttp.GzipHandler(h) }

	mux.Handle("GET /{$}", gz(s.HandleIndex))
	mux.Handle("GET /search", gz(s.HandleSearch))
	mux.Handle("GET /stats", gz(s.HandleStats))
	mux.Handle("POST /reload", gz(s.HandleReload))
	mux.Handle("POST /internal/reload-search-index", gz(s.HandleInternalReload))
	mux.Handle("POST /generate-search-index", gz(s.HandleGenerate))
	mux.Handle("GET /health", gz(s.HandleHealth))

	// Upgraded connection, no response compression
	mux.HandleFunc("GET /events", s.HandleEvents)
}

package api

import (
	"time"

	"github.com/countygis/parcels/pkg/generate"
	"github.com/countygis/parcels/pkg/record"
)

// SearchResult is a parcel record with its relevance score.
type SearchResult struct {
	record.Record
	Score int `json:"score"`
}

type SearchResponse struct {
	Query        string         `json:"query"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	SearchTime   string         `json:"search_time"`
	Generation   string         `json:"generation"`
}

type ReloadResponse struct {
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	TotalEntries int       `json:"total_entries"`
	Timestamp    time.Time `json:"timestamp"`
}

type GenerateResponse struct {
	Status       string           `json:"status"`
	Message      string           `json:"message"`
	Generator    *generate.Result `json:"generator"`
	TotalEntries int              `json:"total_entries"`
	Timestamp    time.Time        `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
	TotalEntries int       `json:"total_entries"`
	Generation   string    `json:"generation"`
}

type IndexResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

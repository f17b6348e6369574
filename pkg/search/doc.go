// Package search provides property search over county parcel records.
//
// # Overview
//
// The package holds the loaded parcel dataset together with its indexes and
// answers free-text queries against owner names, parcel ids and addresses.
// It serves as the search engine for both the REST API and the command line.
//
// # Key Features
//
//   - Index-backed candidate retrieval (exact, token and parcel prefix)
//   - Additive relevance scoring across all fields
//   - Field-scoped search taking the best matching field
//   - County pre-filtering by label or county code
//   - Spatial boosting from a lat/lon hint
//   - Atomic reloads with a per-generation query cache
//
// # Architecture
//
// The package is designed around three pieces:
//
//   - SearchService: owns the current dataset and its lifecycle
//   - Planner: chooses the candidate universe for a query
//   - Scorer: ranks candidates in all-fields or scoped mode
//
// A dataset is built off to the side from a snapshot and published through an
// atomic pointer. Searches load the pointer once, so they always see a
// complete dataset, either the one before a reload or the one after.
//
// # Usage Examples
//
// Basic search across all counties:
//
//	service := search.NewSearchService(search.Options{SnapshotPath: path})
//	_ = service.Load()
//	results, err := service.Search(search.SearchParams{Query: "john smith"})
//
// Search restricted to a county and to the parcel id field:
//
//	params := search.SearchParams{
//		Query:    "R0008450",
//		Counties: []string{"Teton County"},
//		Fields:   []record.Field{record.FieldPIDN},
//	}
//	results, err := service.Search(params)
//
// Parsing HTTP parameters:
//
//	params, err := search.ParseSearchParams(r.URL.Query())
//	if err != nil {
//		// Handle invalid fields or spatial hint
//		return
//	}
//	results, err := service.Search(params)
//
// # Scoring
//
// In all-fields mode signals are summed: an owner phrase match is worth
// 1000, every query word in the owner 800, any word 400; the parcel id adds
// 600 when it contains the query and 500 when it starts with it; each address
// adds 300 for a phrase match or 150 for a word match. Records that matched on
// text earn 50 for a physical address and 25 for a clerk record. A spatial
// hint adds 1000, 500 or 100 for parcels within 1, 10 or 50 km.
//
// In scoped mode each requested field is scored on its own (owner 500,
// parcel id 400, addresses 300, county 200, scaled by match tier) and the best
// field wins.
//
// Hits are sorted by descending score; ties keep snapshot order. At most
// Options.MaxResults hits are returned.
//
// # Integration
//
// This package integrates with:
//
//   - pkg/snapshot: for reading the persisted records
//   - pkg/index: for the lookup structures
//   - pkg/api: as the search backend for REST endpoints
//   - cmd: for the search, stats and serve commands
package search

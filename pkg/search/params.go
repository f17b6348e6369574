package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/countygis/parcels/pkg/record"
)

// DefaultMaxResults caps the ranked result list of a single search.
const DefaultMaxResults = 200

// Point is a geographic position used as a spatial hint.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParsePoint parses "lat,lon".
func ParsePoint(s string) (Point, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("invalid point %q: expected lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid latitude %q: %w", latStr, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid longitude %q: %w", lonStr, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("point %q out of range", s)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// SearchParams represents all parameters for a search operation.
type SearchParams struct {
	// Query is the free text to look for. Blank queries return no results.
	Query string

	// Counties restricts the search to these counties. Entries may be labels
	// ("Teton County") or county codes ("teton_county_wy").
	// If empty, every county is searched.
	Counties []string

	// Fields scopes matching to the listed fields. A record matches when any
	// of them matches. If empty, all fields contribute to the score.
	Fields []record.Field

	// Near biases results towards parcels close to this point.
	Near *Point

	// Limit truncates the ranked list after the service's own cap.
	// Zero means no additional truncation.
	Limit int
}

// ParseSearchParams parses HTTP query parameters into a SearchParams struct.
//
// Supported parameters:
//   - q: Search query string
//   - limit: Maximum number of results (positive integer, defaults to 200)
//   - counties: Comma separated county labels or codes
//   - county: County filter (can be specified multiple times)
//   - fields: Comma separated field names to scope the search to
//   - near: Spatial hint as "lat,lon"
//
// Unknown fields and malformed points return an error, an invalid limit falls
// back to the default.
func ParseSearchParams(queryParams map[string][]string) (SearchParams, error) {
	params := SearchParams{
		Limit: DefaultMaxResults,
	}

	if q := queryParams["q"]; len(q) > 0 {
		params.Query = q[0]
	}

	if limitStr := queryParams["limit"]; len(limitStr) > 0 && limitStr[0] != "" {
		if parsed, err := strconv.Atoi(limitStr[0]); err == nil && parsed > 0 {
			params.Limit = parsed
		}
	}

	for _, v := range queryParams["counties"] {
		params.Counties = append(params.Counties, splitList(v)...)
	}
	for _, v := range queryParams["county"] {
		if v = strings.TrimSpace(v); v != "" {
			params.Counties = append(params.Counties, v)
		}
	}

	for _, v := range queryParams["fields"] {
		for _, name := range splitList(v) {
			f, err := record.ParseField(name)
			if err != nil {
				return params, err
			}
			params.Fields = append(params.Fields, f)
		}
	}

	if near := queryParams["near"]; len(near) > 0 && near[0] != "" {
		p, err := ParsePoint(near[0])
		if err != nil {
			return params, err
		}
		params.Near = &p
	}

	return params, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

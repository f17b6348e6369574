package search

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/countygis/parcels/pkg/record"
)

func TestParseSearchParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected SearchParams
		hasError bool
	}{
		{
			name:  "basic query",
			query: "q=smith&limit=50",
			expected: SearchParams{
				Query: "smith",
				Limit: 50,
			},
		},
		{
			name:  "with county filters",
			query: "q=smith&counties=Fremont%20County,%20Teton%20County&county=lincoln_county_wy",
			expected: SearchParams{
				Query:    "smith",
				Counties: []string{"Fremont County", "Teton County", "lincoln_county_wy"},
				Limit:    200,
			},
		},
		{
			name:  "with field scope",
			query: "q=R0008450&fields=pidn,owner",
			expected: SearchParams{
				Query:  "R0008450",
				Fields: []record.Field{record.FieldPIDN, record.FieldOwner},
				Limit:  200,
			},
		},
		{
			name:  "with spatial hint",
			query: "q=smith&near=43.48,-110.76",
			expected: SearchParams{
				Query: "smith",
				Near:  &Point{Lat: 43.48, Lon: -110.76},
				Limit: 200,
			},
		},
		{
			name:  "defaults when no params",
			query: "",
			expected: SearchParams{
				Limit: 200,
			},
		},
		{
			name:  "invalid limit defaults to 200",
			query: "q=test&limit=invalid",
			expected: SearchParams{
				Query: "test",
				Limit: 200,
			},
		},
		{
			name:     "unknown field returns error",
			query:    "q=test&fields=tax_info",
			hasError: true,
		},
		{
			name:     "invalid spatial hint returns error",
			query:    "q=test&near=43.4",
			hasError: true,
		},
		{
			name:     "out of range spatial hint returns error",
			query:    "q=test&near=143.4,10",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("Failed to parse query string: %v", err)
			}

			params, err := ParseSearchParams(values)

			if tt.hasError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if params.Query != tt.expected.Query {
				t.Errorf("Query: expected %q, got %q", tt.expected.Query, params.Query)
			}

			if params.Limit != tt.expected.Limit {
				t.Errorf("Limit: expected %d, got %d", tt.expected.Limit, params.Limit)
			}

			if fmt.Sprint(params.Counties) != fmt.Sprint(tt.expected.Counties) {
				t.Errorf("Counties: expected %v, got %v", tt.expected.Counties, params.Counties)
			}

			if fmt.Sprint(params.Fields) != fmt.Sprint(tt.expected.Fields) {
				t.Errorf("Fields: expected %v, got %v", tt.expected.Fields, params.Fields)
			}

			if !pointsEqual(params.Near, tt.expected.Near) {
				t.Errorf("Near: expected %v, got %v", tt.expected.Near, params.Near)
			}
		})
	}
}

func pointsEqual(a, b *Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ExampleParseSearchParams() {
	values, _ := url.ParseQuery("q=john+smith&counties=Teton+County,Fremont+County&limit=10")
	params, err := ParseSearchParams(values)

	if err != nil {
		panic(err)
	}

	fmt.Println("Query:", params.Query)
	fmt.Println("Limit:", params.Limit)
	fmt.Println("Counties:", len(params.Counties))

	// Output:
	// Query: john smith
	// Limit: 10
	// Counties: 2
}

func ExampleParsePoint() {
	p, err := ParsePoint("43.4799, -110.7624")
	if err != nil {
		panic(err)
	}
	fmt.Println(p.Lat, p.Lon)

	// Output:
	// 43.4799 -110.7624
}

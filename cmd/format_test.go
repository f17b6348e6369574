package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/countygis/parcels/pkg/generate"
	"github.com/countygis/parcels/pkg/record"
	"github.com/countygis/parcels/pkg/search"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5K"},
		{2500000, "2.5M"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.n); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatTimeAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-50 * time.Hour), "2 days ago"},
		{time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), "Mar 1, 09:30"},
		{time.Date(2023, 11, 20, 9, 30, 0, 0, time.UTC), "Nov 20, 2023"},
	}
	for _, tt := range tests {
		if got := formatTimeAt(tt.t, now); got != tt.want {
			t.Errorf("formatTimeAt(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Microsecond, "250µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatResults(t *testing.T) {
	results := &search.SearchResults{
		Query: "smith",
		Hits: []search.Hit{
			{
				Record: &record.Record{
					GlobalParcelUID: "teton_wy_1",
					PIDN:            "22-41-16-32-1-00-001",
					Owner:           "John Smith Trust",
					PhysicalAddress: "100 Main St",
					County:          "Teton County",
					State:           "WY",
					TaxInfo:         "https://example.org/tax/1",
				},
				Score: 1350,
			},
		},
		TotalCount: 1,
		Duration:   3 * time.Millisecond,
	}

	out := formatResults(results, true)
	for _, want := range []string{
		"John Smith Trust",
		"22-41-16-32-1-00-001",
		"100 Main St",
		"Teton County, WY",
		"score 1350",
		"https://example.org/tax/1",
		"1 parcels in 3ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	if strings.Contains(formatResults(results, false), "score 1350") {
		t.Error("Scores should be hidden unless requested")
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	out := formatResults(&search.SearchResults{Query: "nobody"}, false)
	if !strings.Contains(out, "No matching parcels") {
		t.Errorf("Expected empty message, got:\n%s", out)
	}
}

func TestFormatStats(t *testing.T) {
	stats := search.Stats{
		TotalEntries: 4,
		Counties:     map[string]int{"Teton County": 3, "Fremont County": 1},
		Generation:   "gen-1",
	}

	out := formatStats(stats)
	for _, want := range []string{"Total parcels: 4", "Teton County", "(75.0%)", "Fremont County", "gen-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "Fremont County") > strings.Index(out, "Teton County") {
		t.Error("Expected counties sorted by name")
	}

	empty := formatStats(search.Stats{Generation: "gen-0"})
	if !strings.Contains(empty, "No parcels loaded") {
		t.Errorf("Expected empty message, got:\n%s", empty)
	}
}

func TestFormatGenerateResult(t *testing.T) {
	result := &generate.Result{
		Output: "/tmp/search_index.json",
		Total:  12,
		Counties: []generate.CountyResult{
			{County: "teton_county_wy", Label: "Teton County", Records: 12, Skipped: 2},
			{County: "lincoln_county_wy", Label: "Lincoln County", Error: "no source file"},
		},
		Duration: 2 * time.Second,
	}

	out := formatGenerateResult(result)
	for _, want := range []string{"Teton County", "2 skipped", "Lincoln County", "no source file", "12 records written to /tmp/search_index.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

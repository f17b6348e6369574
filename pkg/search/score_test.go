package search

import (
	"testing"

	"github.com/countygis/parcels/pkg/record"
	"github.com/stretchr/testify/assert"
)

func TestAllFieldsScore(t *testing.T) {
	r := &record.Record{
		Owner:           "John Smith",
		PIDN:            "R0008450",
		MailingAddress:  "PO Box 9, Jackson WY",
		PhysicalAddress: "12 Main St",
		ClerkRec:        "https://clerk.example/1",
	}

	tests := []struct {
		name  string
		query string
		want  int
		match bool
	}{
		{"owner phrase", "john smith", 1000 + 50 + 25, true},
		{"owner all words", "smith john", 800 + 50 + 25, true},
		{"owner any word", "john doe", 400 + 50 + 25, true},
		{"parcel prefix", "r000", 600 + 500 + 50 + 25, true},
		{"parcel substring", "8450", 600 + 50 + 25, true},
		{"address phrase", "main st", 300 + 50 + 25, true},
		{"address word", "jackson hole", 150 + 50 + 25, true},
		{"case and whitespace", "  JOHN SMITH ", 1000 + 50 + 25, true},
		{"no text match", "zebra", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := newScorer(tt.query, nil, nil).score(r)
			assert.Equal(t, tt.match, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllFieldsScoreSumsAddresses(t *testing.T) {
	r := &record.Record{MailingAddress: "100 Main St", PhysicalAddress: "100 Main St"}
	got, ok := newScorer("100 main st", nil, nil).score(r)
	assert.True(t, ok)
	assert.Equal(t, 300+300+50, got)
}

func TestAllFieldsMissingFields(t *testing.T) {
	got, ok := newScorer("smith", nil, nil).score(&record.Record{})
	assert.False(t, ok)
	assert.Equal(t, 0, got)
}

func TestScopedScore(t *testing.T) {
	r := &record.Record{
		Owner:          "John Smith",
		PIDN:           "R0008450",
		MailingAddress: "R0008450 Ranch Rd",
		County:         "Teton County",
	}

	tests := []struct {
		name   string
		query  string
		fields []record.Field
		want   int
	}{
		{"owner phrase", "john smith", []record.Field{record.FieldOwner}, 500},
		{"owner all words", "smith john", []record.Field{record.FieldOwner}, 400},
		{"owner any word", "john doe", []record.Field{record.FieldOwner}, 200},
		{"pidn only", "r0008450", []record.Field{record.FieldPIDN}, 400},
		{"best field wins", "r0008450", []record.Field{record.FieldMailingAddress, record.FieldPIDN}, 400},
		{"address only", "r0008450", []record.Field{record.FieldMailingAddress}, 300},
		{"county", "teton", []record.Field{record.FieldCounty}, 200},
		{"no flat bonuses", "john smith", []record.Field{record.FieldOwner, record.FieldCounty}, 500},
		{"miss", "john smith", []record.Field{record.FieldPIDN}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := newScorer(tt.query, tt.fields, nil).score(r)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProximityBonus(t *testing.T) {
	near := &Point{Lat: 43.0, Lon: -110.0}
	box := func(dLat float64) *record.BBox {
		return record.NewBBox(-110.001, 43.0+dLat-0.001, -109.999, 43.0+dLat+0.001)
	}

	assert.Equal(t, 1000, proximityBonus(near, box(0.005)))
	assert.Equal(t, 500, proximityBonus(near, box(0.05)))
	assert.Equal(t, 100, proximityBonus(near, box(0.3)))
	assert.Equal(t, 0, proximityBonus(near, box(1.0)))
	assert.Equal(t, 0, proximityBonus(near, nil))
	assert.Equal(t, 0, proximityBonus(nil, box(0)))
}

func TestProximityOnlyForMatches(t *testing.T) {
	near := &Point{Lat: 43.0, Lon: -110.0}
	r := &record.Record{Owner: "Pat Lee", BBox: record.NewBBox(-110.001, 42.999, -109.999, 43.001)}

	got, ok := newScorer("pat lee", nil, near).score(r)
	assert.True(t, ok)
	assert.Equal(t, 1000+1000, got)

	_, ok = newScorer("nobody", nil, near).score(r)
	assert.False(t, ok, "a close parcel still has to match the text")
}

func TestDistanceKm(t *testing.T) {
	// One degree of latitude is roughly 111 km.
	assert.InDelta(t, 111.2, distanceKm(43, -110, 44, -110), 0.5)
	assert.InDelta(t, 0, distanceKm(43, -110, 43, -110), 1e-9)
}

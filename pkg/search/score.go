package search

import (
	"strings"

	"github.com/countygis/parcels/pkg/index"
	"github.com/countygis/parcels/pkg/record"
)

// All-fields weights.
const (
	ownerPhrase    = 1000
	ownerAllWords  = 800
	ownerAnyWord   = 400
	parcelContains = 600
	parcelPrefix   = 500
	addressPhrase  = 300
	addressAnyWord = 150
	physicalBonus  = 50
	clerkBonus     = 25
)

// Scoped-mode field weights. A phrase match earns the full weight, all words
// 4/5 of it and any word 2/5.
var fieldWeights = map[record.Field]int{
	record.FieldOwner:           500,
	record.FieldPIDN:            400,
	record.FieldMailingAddress:  300,
	record.FieldPhysicalAddress: 300,
	record.FieldCounty:          200,
}

// scorer holds the normalized form of one query.
type scorer struct {
	phrase string
	words  []string
	fields []record.Field
	near   *Point
}

func newScorer(query string, fields []record.Field, near *Point) *scorer {
	phrase := index.Normalize(query)
	return &scorer{
		phrase: phrase,
		words:  strings.Fields(phrase),
		fields: fields,
		near:   near,
	}
}

// score returns the relevance of r and whether it matches at all.
func (s *scorer) score(r *record.Record) (int, bool) {
	var score int
	if len(s.fields) > 0 {
		score = s.scoped(r)
	} else {
		score = s.allFields(r)
	}
	if score == 0 {
		return 0, false
	}
	return score + proximityBonus(s.near, r.BBox), true
}

// allFields sums every signal. Flat bonuses only apply to records that
// matched on text.
func (s *scorer) allFields(r *record.Record) int {
	score := 0

	owner := index.Normalize(r.Owner)
	switch {
	case strings.Contains(owner, s.phrase):
		score += ownerPhrase
	case s.allWordsIn(owner):
		score += ownerAllWords
	case s.anyWordIn(owner):
		score += ownerAnyWord
	}

	pidn := index.Normalize(r.PIDN)
	if strings.Contains(pidn, s.phrase) {
		score += parcelContains
	}
	if strings.HasPrefix(pidn, s.phrase) {
		score += parcelPrefix
	}

	for _, addr := range []string{r.MailingAddress, r.PhysicalAddress} {
		addr = index.Normalize(addr)
		switch {
		case strings.Contains(addr, s.phrase):
			score += addressPhrase
		case s.anyWordIn(addr):
			score += addressAnyWord
		}
	}

	if score == 0 {
		return 0
	}
	if strings.TrimSpace(r.PhysicalAddress) != "" {
		score += physicalBonus
	}
	if strings.TrimSpace(r.ClerkRec) != "" {
		score += clerkBonus
	}
	return score
}

// scoped takes the best single field score among the requested fields.
func (s *scorer) scoped(r *record.Record) int {
	best := 0
	for _, f := range s.fields {
		w := fieldWeights[f]
		v := index.Normalize(r.Value(f))
		var fs int
		switch {
		case strings.Contains(v, s.phrase):
			fs = w
		case s.allWordsIn(v):
			fs = w * 4 / 5
		case s.anyWordIn(v):
			fs = w * 2 / 5
		}
		if fs > best {
			best = fs
		}
	}
	return best
}

func (s *scorer) allWordsIn(v string) bool {
	if v == "" || len(s.words) == 0 {
		return false
	}
	for _, w := range s.words {
		if !strings.Contains(v, w) {
			return false
		}
	}
	return true
}

func (s *scorer) anyWordIn(v string) bool {
	if v == "" {
		return false
	}
	for _, w := range s.words {
		if strings.Contains(v, w) {
			return true
		}
	}
	return false
}

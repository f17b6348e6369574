package search

import (
	"sort"
	"unicode/utf8"

	"github.com/countygis/parcels/pkg/index"
)

// plan describes which records a query is scored against: every record when
// all is set, otherwise the ascending positions.
type plan struct {
	all       bool
	positions []int
}

// planQuery picks the candidate universe for a query.
//
// A county filter restricts the universe to those counties and scans it.
// Field-scoped searches scan as well, since county and mid-string parcel
// matches are not reachable through the indexes. Otherwise candidates come
// from the exact, token and prefix indexes.
func planQuery(idx *index.Index, phrase string, params *SearchParams, maxResults int) plan {
	if len(params.Counties) > 0 {
		codes := idx.ResolveCounties(params.Counties)
		lists := make([]index.Postings, 0, len(codes))
		for _, code := range codes {
			lists = append(lists, idx.County[code])
		}
		return plan{positions: mergePostings(lists)}
	}
	if len(params.Fields) > 0 {
		return plan{all: true}
	}
	return plan{positions: lookupCandidates(idx, phrase, maxResults)}
}

// lookupCandidates unions the exact matches for the whole phrase and, unless
// those already fill a result page, the token and parcel prefix lookups.
func lookupCandidates(idx *index.Index, phrase string, maxResults int) []int {
	seen := make(map[int]struct{})
	collect := func(p index.Postings) {
		for _, pos := range p {
			seen[pos] = struct{}{}
		}
	}

	collect(idx.Owner[phrase])
	collect(idx.Parcel[phrase])
	collect(idx.Address[phrase])

	if len(seen) < maxResults {
		for _, tok := range index.Tokens(phrase) {
			collect(idx.Token[tok])
		}
		if utf8.RuneCountInString(phrase) >= index.MinPrefixLen {
			collect(idx.LookupPrefix(phrase))
		}
	}

	out := make([]int, 0, len(seen))
	for pos := range seen {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// mergePostings merges ascending lists into one ascending list. County
// postings never overlap, so no deduplication is needed.
func mergePostings(lists []index.Postings) []int {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]int, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	sort.Ints(out)
	return out
}

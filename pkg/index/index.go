// Package index builds the in-memory lookup structures used to narrow the
// candidate set of a property search before scoring.
//
// An Index is built in one pass over an ordered slice of records and is never
// modified afterwards. Every structure maps a normalized key to the ascending
// positions of the records carrying it, so a position can be used directly as
// an offset into the slice the index was built from.
package index

import (
	"unicode/utf8"

	"github.com/countygis/parcels/pkg/record"
)

const (
	// MinTokenLen is the shortest word stored in the token index.
	MinTokenLen = 3
	// MinPrefixLen is the shortest parcel id prefix stored.
	MinPrefixLen = 3
	// DefaultMaxPrefixLen bounds how many prefixes a single parcel id produces.
	DefaultMaxPrefixLen = 24
)

// Options controls index construction.
type Options struct {
	// MaxPrefixLen is the longest parcel id prefix (in runes) that is indexed.
	// Values below MinPrefixLen fall back to DefaultMaxPrefixLen.
	MaxPrefixLen int
}

// Postings is an ascending, duplicate free list of record positions.
type Postings []int

// add appends pos unless it is already the last element. Build visits records
// in order, so this is enough to keep the list unique.
func (p Postings) add(pos int) Postings {
	if n := len(p); n > 0 && p[n-1] == pos {
		return p
	}
	return append(p, pos)
}

// Index holds every lookup structure for one dataset.
type Index struct {
	Owner        map[string]Postings
	Parcel       map[string]Postings
	ParcelPrefix map[string]Postings
	Address      map[string]Postings
	Token        map[string]Postings

	// County maps a county code to its records; CountyLabels maps a
	// normalized county label to the codes carrying it.
	County       map[string]Postings
	CountyLabels map[string][]string

	maxPrefixLen int
	size         int
}

// Build indexes records in a single pass. Empty fields are skipped.
func Build(records []record.Record, opts Options) *Index {
	maxPrefix := opts.MaxPrefixLen
	if maxPrefix < MinPrefixLen {
		maxPrefix = DefaultMaxPrefixLen
	}

	idx := &Index{
		Owner:        make(map[string]Postings),
		Parcel:       make(map[string]Postings),
		ParcelPrefix: make(map[string]Postings),
		Address:      make(map[string]Postings),
		Token:        make(map[string]Postings),
		County:       make(map[string]Postings),
		CountyLabels: make(map[string][]string),
		maxPrefixLen: maxPrefix,
		size:         len(records),
	}

	for pos := range records {
		r := &records[pos]

		if owner := Normalize(r.Owner); owner != "" {
			idx.Owner[owner] = idx.Owner[owner].add(pos)
			idx.addTokens(owner, pos)
		}

		if pidn := Normalize(r.PIDN); pidn != "" {
			idx.Parcel[pidn] = idx.Parcel[pidn].add(pos)
			idx.addPrefixes(pidn, pos)
		}

		for _, addr := range []string{r.MailingAddress, r.PhysicalAddress} {
			if addr = Normalize(addr); addr != "" {
				idx.Address[addr] = idx.Address[addr].add(pos)
				idx.addTokens(addr, pos)
			}
		}

		if r.County != "" {
			code := r.CountyCode()
			if _, seen := idx.County[code]; !seen {
				label := Normalize(r.County)
				idx.CountyLabels[label] = append(idx.CountyLabels[label], code)
			}
			idx.County[code] = idx.County[code].add(pos)
		}
	}

	return idx
}

func (idx *Index) addTokens(value string, pos int) {
	for _, tok := range Tokens(value) {
		idx.Token[tok] = idx.Token[tok].add(pos)
	}
}

func (idx *Index) addPrefixes(pidn string, pos int) {
	n := 0
	for i := range pidn {
		if n >= MinPrefixLen {
			p := pidn[:i]
			idx.ParcelPrefix[p] = idx.ParcelPrefix[p].add(pos)
		}
		n++
		if n > idx.maxPrefixLen {
			return
		}
	}
	if n >= MinPrefixLen && n <= idx.maxPrefixLen {
		idx.ParcelPrefix[pidn] = idx.ParcelPrefix[pidn].add(pos)
	}
}

// Len returns the number of records the index was built from.
func (idx *Index) Len() int {
	return idx.size
}

// MaxPrefixLen returns the prefix cap the index was built with.
func (idx *Index) MaxPrefixLen() int {
	return idx.maxPrefixLen
}

// LookupPrefix returns the records whose parcel id starts with prefix. A
// prefix longer than the cap is looked up by its capped form, so callers must
// verify the full prefix themselves.
func (idx *Index) LookupPrefix(prefix string) Postings {
	if utf8.RuneCountInString(prefix) < MinPrefixLen {
		return nil
	}
	n := 0
	for i := range prefix {
		if n == idx.maxPrefixLen {
			prefix = prefix[:i]
			break
		}
		n++
	}
	return idx.ParcelPrefix[prefix]
}

// ResolveCounties maps county filters to county codes. A filter may be a
// label ("Teton County", matching every state that has one) or a code
// ("teton_county_wy"). Unknown filters resolve to nothing.
func (idx *Index) ResolveCounties(filters []string) []string {
	var codes []string
	seen := make(map[string]bool)
	for _, f := range filters {
		key := Normalize(f)
		if key == "" {
			continue
		}
		candidates := idx.CountyLabels[key]
		if _, ok := idx.County[key]; ok {
			candidates = append(candidates[:len(candidates):len(candidates)], key)
		}
		for _, code := range candidates {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	return codes
}

// Stats reports the number of keys per structure.
type Stats struct {
	Records        int `json:"records"`
	OwnerKeys      int `json:"owner_keys"`
	ParcelKeys     int `json:"parcel_keys"`
	ParcelPrefixes int `json:"parcel_prefixes"`
	AddressKeys    int `json:"address_keys"`
	Tokens         int `json:"tokens"`
	Counties       int `json:"counties"`
}

// Stats summarizes the index size.
func (idx *Index) Stats() Stats {
	return Stats{
		Records:        idx.size,
		OwnerKeys:      len(idx.Owner),
		ParcelKeys:     len(idx.Parcel),
		ParcelPrefixes: len(idx.ParcelPrefix),
		AddressKeys:    len(idx.Address),
		Tokens:         len(idx.Token),
		Counties:       len(idx.County),
	}
}

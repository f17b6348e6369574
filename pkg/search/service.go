package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/countygis/parcels/pkg/index"
	"github.com/countygis/parcels/pkg/log"
	"github.com/countygis/parcels/pkg/record"
	"github.com/countygis/parcels/pkg/snapshot"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of distinct queries cached per dataset.
const DefaultCacheSize = 512

// Options configures a SearchService.
type Options struct {
	// SnapshotPath is the file read by Load and Reload.
	SnapshotPath string
	// MaxResults caps every ranked list. Defaults to DefaultMaxResults.
	MaxResults int
	// MinScore drops matches scoring below it. Zero disables the floor.
	MinScore int
	// MaxPrefixLen bounds the parcel prefix index.
	MaxPrefixLen int
	// CacheSize is the per-dataset query cache size. Negative disables it.
	CacheSize int
}

// Hit is a ranked search result. Record points into the loaded dataset and
// must not be modified.
type Hit struct {
	Record *record.Record
	Score  int
}

// SearchResults contains the ranked hits of a search operation.
type SearchResults struct {
	Query string
	Hits  []Hit
	// TotalCount is the number of hits returned after Limit was applied.
	TotalCount int
	Limit      int
	Duration   time.Duration
	// Generation identifies the dataset the search ran against.
	Generation string
}

// Stats describes the loaded dataset.
type Stats struct {
	TotalEntries int            `json:"total_entries"`
	Counties     map[string]int `json:"counties"`
	LastUpdated  *time.Time     `json:"last_updated,omitempty"`
	Generation   string         `json:"generation"`
	LoadedAt     time.Time      `json:"loaded_at"`
	Skipped      int            `json:"skipped"`
	Index        index.Stats    `json:"index"`
}

// ReloadEvent is delivered to OnReload listeners after a new dataset has
// been swapped in.
type ReloadEvent struct {
	Generation   string    `json:"generation"`
	TotalEntries int       `json:"total_entries"`
	Skipped      int       `json:"skipped"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// dataset is one immutable generation of records and indexes. A reload
// builds a new dataset and swaps the pointer; nothing is modified in place.
type dataset struct {
	id       string
	records  []record.Record
	idx      *index.Index
	modTime  time.Time
	loadedAt time.Time
	skipped  int
	cache    *lru.Cache[string, []Hit]
}

// SearchService owns the parcel dataset and answers searches over it.
// It is safe for concurrent use.
type SearchService struct {
	opts    Options
	current atomic.Pointer[dataset]
	reloads singleflight.Group
	logger  *log.Logger

	mu        sync.Mutex
	listeners []func(ReloadEvent)
}

// NewSearchService creates a service with an empty dataset. Call Load to read
// the snapshot.
func NewSearchService(opts Options) *SearchService {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
	s := &SearchService{
		opts:   opts,
		logger: log.ForService("search"),
	}
	s.current.Store(s.newDataset(nil))
	return s
}

// Load reads the snapshot and builds the indexes. When the snapshot is
// missing or unreadable the service keeps an empty dataset, so startup never
// fails on data; the returned error is informational.
func (s *SearchService) Load() error {
	ds, err := s.loadDataset()
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			s.logger.Warnf("search index not found, serving an empty dataset: %v", err)
		} else {
			s.logger.Errorf("loading search index, serving an empty dataset: %v", err)
		}
		s.swap(s.newDataset(nil))
		return err
	}
	s.swap(ds)
	return nil
}

// Reload re-reads the snapshot and atomically replaces the dataset.
// Concurrent calls share a single rebuild. On failure the previous dataset
// keeps serving. ctx only bounds how long the caller waits; an abandoned
// rebuild still completes and is swapped in.
func (s *SearchService) Reload(ctx context.Context) (int, error) {
	ch := s.reloads.DoChan("reload", func() (interface{}, error) {
		ds, err := s.loadDataset()
		if err != nil {
			return 0, err
		}
		s.swap(ds)
		return len(ds.records), nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Errorf("reload failed, keeping generation %s: %v", s.current.Load().id, res.Err)
			return 0, fmt.Errorf("reloading search index: %w", res.Err)
		}
		return res.Val.(int), nil
	}
}

// OnReload registers fn to be called after every dataset swap.
func (s *SearchService) OnReload(fn func(ReloadEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Len returns the number of loaded records.
func (s *SearchService) Len() int {
	return len(s.current.Load().records)
}

// SnapshotPath returns the snapshot file the service loads from.
func (s *SearchService) SnapshotPath() string {
	return s.opts.SnapshotPath
}

func (s *SearchService) loadDataset() (*dataset, error) {
	start := time.Now()
	snap, err := snapshot.Read(s.opts.SnapshotPath)
	if err != nil {
		return nil, err
	}
	ds := s.newDataset(snap)
	s.logger.Infof("loaded %d entries from %s (%s, %d skipped) in %s",
		len(ds.records), snap.Path, snap.Format, ds.skipped, time.Since(start).Round(time.Millisecond))
	return ds, nil
}

// newDataset validates the snapshot records and builds the indexes. Records
// without an id or repeating an earlier id are skipped.
func (s *SearchService) newDataset(snap *snapshot.Snapshot) *dataset {
	ds := &dataset{
		id:       uuid.NewString(),
		loadedAt: time.Now().UTC(),
	}

	if snap != nil {
		ds.modTime = snap.ModTime
		ds.skipped = snap.Skipped
		ds.records = make([]record.Record, 0, len(snap.Records))
		seen := make(map[string]struct{}, len(snap.Records))
		for _, r := range snap.Records {
			if !r.Sanitize() {
				ds.skipped++
				continue
			}
			if _, dup := seen[r.GlobalParcelUID]; dup {
				ds.skipped++
				s.logger.Debugf("skipping duplicate parcel %s", r.GlobalParcelUID)
				continue
			}
			seen[r.GlobalParcelUID] = struct{}{}
			ds.records = append(ds.records, r)
		}
	}

	ds.idx = index.Build(ds.records, index.Options{MaxPrefixLen: s.opts.MaxPrefixLen})

	if s.opts.CacheSize > 0 {
		ds.cache, _ = lru.New[string, []Hit](s.opts.CacheSize)
	}
	return ds
}

func (s *SearchService) swap(ds *dataset) {
	s.current.Store(ds)

	s.mu.Lock()
	listeners := append([]func(ReloadEvent){}, s.listeners...)
	s.mu.Unlock()

	event := ReloadEvent{
		Generation:   ds.id,
		TotalEntries: len(ds.records),
		Skipped:      ds.skipped,
		LoadedAt:     ds.loadedAt,
	}
	for _, fn := range listeners {
		fn(event)
	}
}

// Search executes a search over the current dataset.
//
// The search operation:
// 1. Returns no hits for a blank query
// 2. Plans the candidate set (county pre-filter, field scan or index lookup)
// 3. Scores candidates in dataset order
// 4. Sorts by descending score, keeping dataset order on ties
// 5. Truncates to the service cap and then to params.Limit
//
// Results for identical parameters are cached until the next reload.
func (s *SearchService) Search(params SearchParams) (*SearchResults, error) {
	start := time.Now()
	ds := s.current.Load()

	results := &SearchResults{
		Query:      params.Query,
		Limit:      params.Limit,
		Generation: ds.id,
	}

	for _, f := range params.Fields {
		if _, ok := fieldWeights[f]; !ok {
			return nil, fmt.Errorf("unknown search field %q", f)
		}
	}

	phrase := index.Normalize(params.Query)
	if phrase == "" {
		s.logger.Debugf("ignoring blank query")
		results.Hits = []Hit{}
		results.Duration = time.Since(start)
		return results, nil
	}

	key := cacheKey(phrase, &params)
	hits, cached := ds.lookupCache(key)
	if !cached {
		hits = s.rank(ds, phrase, &params)
		ds.storeCache(key, hits)
	}

	if params.Limit > 0 && len(hits) > params.Limit {
		hits = hits[:params.Limit]
	}
	results.Hits = append(make([]Hit, 0, len(hits)), hits...)
	results.TotalCount = len(results.Hits)
	results.Duration = time.Since(start)

	s.logger.Debugf("query %q: %d hits (cached=%t) in %s", params.Query, results.TotalCount, cached, results.Duration)
	return results, nil
}

func (s *SearchService) rank(ds *dataset, phrase string, params *SearchParams) []Hit {
	sc := newScorer(phrase, params.Fields, params.Near)
	p := planQuery(ds.idx, phrase, params, s.opts.MaxResults)

	hits := make([]Hit, 0, 64)
	consider := func(pos int) {
		r := &ds.records[pos]
		score, ok := sc.score(r)
		if !ok || score < s.opts.MinScore {
			return
		}
		hits = append(hits, Hit{Record: r, Score: score})
	}

	if p.all {
		for pos := range ds.records {
			consider(pos)
		}
	} else {
		for _, pos := range p.positions {
			consider(pos)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > s.opts.MaxResults {
		hits = hits[:s.opts.MaxResults]
	}
	return hits
}

func (ds *dataset) lookupCache(key string) ([]Hit, bool) {
	if ds.cache == nil {
		return nil, false
	}
	return ds.cache.Get(key)
}

func (ds *dataset) storeCache(key string, hits []Hit) {
	if ds.cache != nil {
		ds.cache.Add(key, hits)
	}
}

// cacheKey covers every parameter that changes the ranked list. Limit is
// applied after caching and is left out.
func cacheKey(phrase string, params *SearchParams) string {
	var b strings.Builder
	b.WriteString(phrase)
	b.WriteByte(0)
	counties := make([]string, len(params.Counties))
	for i, c := range params.Counties {
		counties[i] = index.Normalize(c)
	}
	sort.Strings(counties)
	b.WriteString(strings.Join(counties, ","))
	b.WriteByte(0)
	fields := make([]string, len(params.Fields))
	for i, f := range params.Fields {
		fields[i] = string(f)
	}
	sort.Strings(fields)
	b.WriteString(strings.Join(fields, ","))
	b.WriteByte(0)
	if params.Near != nil {
		b.WriteString(strconv.FormatFloat(params.Near.Lat, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(params.Near.Lon, 'g', -1, 64))
	}
	return b.String()
}

// Stats computes record counts per county label in a single pass over the
// current dataset.
func (s *SearchService) Stats() Stats {
	ds := s.current.Load()

	counties := make(map[string]int)
	for i := range ds.records {
		county := ds.records[i].County
		if county == "" {
			county = "unknown"
		}
		counties[county]++
	}

	st := Stats{
		TotalEntries: len(ds.records),
		Counties:     counties,
		Generation:   ds.id,
		LoadedAt:     ds.loadedAt,
		Skipped:      ds.skipped,
		Index:        ds.idx.Stats(),
	}
	if !ds.modTime.IsZero() {
		mt := ds.modTime
		st.LastUpdated = &mt
	}
	return st
}

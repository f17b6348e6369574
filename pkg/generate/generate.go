// Package generate builds the search snapshot from per-county ownership
// exports. Each county directory holds either a GeoJSON feature collection or
// an ESRI shapefile; features are mapped onto record.Record and written as a
// single snapshot in county order.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/countygis/parcels/pkg/log"
	"github.com/countygis/parcels/pkg/record"
	"github.com/countygis/parcels/pkg/snapshot"
	"github.com/panjf2000/ants/v2"
)

// DefaultCounties are the counties exported by the ownership pipeline.
var DefaultCounties = []string{
	"fremont_county_wy",
	"teton_county_id",
	"sublette_county_wy",
	"lincoln_county_wy",
	"teton_county_wy",
}

// ErrNoSource is reported for a county whose export could not be found.
var ErrNoSource = errors.New("no county export found")

// SourceKind identifies the export format of a county.
type SourceKind int

const (
	SourceGeoJSON SourceKind = iota
	SourceShapefile
)

func (k SourceKind) String() string {
	if k == SourceShapefile {
		return "shapefile"
	}
	return "geojson"
}

// Source is a located county export.
type Source struct {
	County string
	Kind   SourceKind
	Path   string
}

// Options configures a Generator.
type Options struct {
	// SourceDir contains one <county>_data_files directory per county.
	SourceDir string
	// Counties are converted and written in this order.
	Counties []string
	// Workers bounds the number of counties converted at once.
	Workers int
	// Output is the snapshot path. The extension selects the encoding.
	Output string
}

// CountyResult reports the conversion of a single county.
type CountyResult struct {
	County  string        `json:"county"`
	Label   string        `json:"label"`
	Source  string        `json:"source,omitempty"`
	Records int           `json:"records"`
	Skipped int           `json:"skipped"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`

	records []record.Record
}

// Result summarizes a generator run.
type Result struct {
	Output   string         `json:"output"`
	Total    int            `json:"total_records"`
	Counties []CountyResult `json:"counties"`
	Duration time.Duration  `json:"duration"`
}

// Generator converts county exports into a snapshot.
type Generator struct {
	opts   Options
	logger *log.Logger
}

// New creates a Generator, filling in defaults for unset options.
func New(opts Options) *Generator {
	if len(opts.Counties) == 0 {
		opts.Counties = DefaultCounties
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Generator{opts: opts, logger: log.ForService("generator")}
}

// Locate finds the export for a county, preferring GeoJSON over a shapefile.
func Locate(sourceDir, county string) (Source, error) {
	dir := filepath.Join(sourceDir, county+"_data_files")
	base := filepath.Join(dir, county+"_final_ownership")

	candidates := []Source{
		{County: county, Kind: SourceGeoJSON, Path: base + ".geojson"},
		{County: county, Kind: SourceShapefile, Path: base + ".shp"},
	}
	for _, c := range candidates {
		if _, err := os.Stat(c.Path); err == nil {
			return c, nil
		}
	}
	return Source{}, fmt.Errorf("%w: %s", ErrNoSource, dir)
}

// Collect converts every configured county and returns the records in county
// order. Missing or unreadable counties are logged and reported in the
// per-county results; they do not fail the run.
func (g *Generator) Collect(ctx context.Context) ([]record.Record, []CountyResult, error) {
	pool, err := ants.NewPool(g.opts.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]CountyResult, len(g.opts.Counties))
	var wg sync.WaitGroup

	for i, county := range g.opts.Counties {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, nil, err
		}

		i, county := i, county
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = g.convert(county)
		})
		if err != nil {
			wg.Done()
			results[i] = CountyResult{County: county, Label: record.CountyLabel(county), Error: err.Error()}
		}
	}
	wg.Wait()

	var records []record.Record
	for i := range results {
		records = append(records, results[i].records...)
		results[i].records = nil
	}
	return records, results, ctx.Err()
}

func (g *Generator) convert(county string) CountyResult {
	start := time.Now()
	res := CountyResult{County: county, Label: record.CountyLabel(county)}

	src, err := Locate(g.opts.SourceDir, county)
	if err != nil {
		g.logger.Warnf("skipping %s: %v", county, err)
		res.Error = err.Error()
		return res
	}
	res.Source = src.Path

	var conv converted
	switch src.Kind {
	case SourceShapefile:
		conv, err = readShapefile(src)
	default:
		conv, err = readGeoJSON(src)
	}
	res.Elapsed = time.Since(start)
	if err != nil {
		g.logger.Errorf("converting %s from %s: %v", county, src.Path, err)
		res.Error = err.Error()
		return res
	}

	res.records = conv.records
	res.Records = len(conv.records)
	res.Skipped = conv.skipped
	g.logger.Infof("converted %s: %d records from %s (%d skipped) in %s",
		county, res.Records, src.Kind, res.Skipped, res.Elapsed.Round(time.Millisecond))
	return res
}

// Run converts all counties and writes the snapshot to Options.Output.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	if g.opts.Output == "" {
		return nil, errors.New("no output path configured")
	}

	start := time.Now()
	records, counties, err := g.Collect(ctx)
	if err != nil {
		return nil, err
	}

	if err := snapshot.Write(g.opts.Output, records); err != nil {
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}

	res := &Result{
		Output:   g.opts.Output,
		Total:    len(records),
		Counties: counties,
		Duration: time.Since(start),
	}
	g.logger.Infof("wrote %d records from %d counties to %s in %s",
		res.Total, len(counties), res.Output, res.Duration.Round(time.Millisecond))
	return res, nil
}

// converted holds the records of one county export.
type converted struct {
	records []record.Record
	skipped int
}

// canonical property names of the ownership exports.
const (
	propUID             = "global_parcel_uid"
	propPIDN            = "county_parcel_id_num"
	propOwner           = "owner_name"
	propMailingAddress  = "mailing_address"
	propPhysicalAddress = "physical_address"
	propClerkRecords    = "clerk_records_link"
	propPropertyDetails = "property_details_link"
	propTaxDetails      = "tax_details_link"
)

// newRecord maps export properties onto a record. get returns the trimmed
// string value of a property or "".
func newRecord(county string, get func(name string) string, bbox *record.BBox) record.Record {
	return record.Record{
		GlobalParcelUID: get(propUID),
		PIDN:            get(propPIDN),
		Owner:           get(propOwner),
		MailingAddress:  get(propMailingAddress),
		PhysicalAddress: get(propPhysicalAddress),
		County:          record.CountyLabel(county),
		State:           record.StateFromCode(county),
		BBox:            bbox,
		ClerkRec:        get(propClerkRecords),
		PropertyDet:     get(propPropertyDetails),
		TaxInfo:         get(propTaxDetails),
	}
}

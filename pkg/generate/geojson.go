package generate

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/countygis/parcels/pkg/record"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func readGeoJSON(src Source) (converted, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return converted{}, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return converted{}, fmt.Errorf("parsing feature collection: %w", err)
	}

	var out converted
	out.records = make([]record.Record, 0, len(fc.Features))
	for _, f := range fc.Features {
		props := f.Properties
		get := func(name string) string { return propertyString(props, name) }

		r := newRecord(src.County, get, geometryBBox(f.Geometry))
		if r.GlobalParcelUID == "" {
			out.skipped++
			continue
		}
		out.records = append(out.records, r)
	}
	return out, nil
}

// geometryBBox returns the bounds of polygonal geometry. Points, lines and
// empty geometries have no box.
func geometryBBox(g orb.Geometry) *record.BBox {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil
	}
	b := g.Bound()
	return record.NewBBox(b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
}

func propertyString(props geojson.Properties, name string) string {
	switch v := props[name].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

package generate

import (
	"fmt"
	"strings"

	"github.com/countygis/parcels/pkg/record"
	shp "github.com/jonas-p/go-shp"
)

// dbfNameLen is the longest field name a DBF table can hold.
const dbfNameLen = 10

// dbfName returns the DBF column holding a canonical property.
func dbfName(prop string) string {
	if len(prop) > dbfNameLen {
		prop = prop[:dbfNameLen]
	}
	return strings.ToLower(prop)
}

func readShapefile(src Source) (converted, error) {
	r, err := shp.Open(src.Path)
	if err != nil {
		return converted{}, err
	}
	defer r.Close()

	columns := make(map[string]int)
	for i, f := range r.Fields() {
		columns[strings.ToLower(strings.TrimSpace(f.String()))] = i
	}
	if _, ok := columns[dbfName(propUID)]; !ok {
		return converted{}, fmt.Errorf("attribute table has no %s column", dbfName(propUID))
	}

	var out converted
	for r.Next() {
		row, shape := r.Shape()
		get := func(name string) string {
			col, ok := columns[dbfName(name)]
			if !ok {
				return ""
			}
			return strings.TrimSpace(strings.Trim(r.ReadAttribute(row, col), "\x00"))
		}

		rec := newRecord(src.County, get, shapeBBox(shape))
		if rec.GlobalParcelUID == "" {
			out.skipped++
			continue
		}
		out.records = append(out.records, rec)
	}
	if err := r.Err(); err != nil {
		return converted{}, fmt.Errorf("reading %s: %w", src.Path, err)
	}
	return out, nil
}

func shapeBBox(s shp.Shape) *record.BBox {
	poly, ok := s.(*shp.Polygon)
	if !ok || len(poly.Points) == 0 {
		return nil
	}
	b := poly.BBox()
	return record.NewBBox(b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Package record defines the canonical per-parcel search document produced by
// the ingestion pipeline and consumed by the search index.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Record is one parcel as stored in the search snapshot. Missing fields are
// empty strings; records are never mutated after a snapshot is loaded.
type Record struct {
	GlobalParcelUID string `json:"global_parcel_uid"`
	PIDN            string `json:"pidn"`
	Owner           string `json:"owner"`
	MailingAddress  string `json:"mailing_address"`
	PhysicalAddress string `json:"physical_address"`
	County          string `json:"county"`
	State           string `json:"state"`
	BBox            *BBox  `json:"bbox"`
	ClerkRec        string `json:"clerk_rec"`
	PropertyDet     string `json:"property_det"`
	TaxInfo         string `json:"tax_info"`
}

// BBox is a geographic bounding box: [min_lon, min_lat, max_lon, max_lat].
type BBox [4]float64

// NewBBox returns a bounding box or nil when the corners are degenerate.
func NewBBox(minLon, minLat, maxLon, maxLat float64) *BBox {
	b := BBox{minLon, minLat, maxLon, maxLat}
	if !b.Valid() {
		return nil
	}
	return &b
}

func (b BBox) MinLon() float64 { return b[0] }
func (b BBox) MinLat() float64 { return b[1] }
func (b BBox) MaxLon() float64 { return b[2] }
func (b BBox) MaxLat() float64 { return b[3] }

// Valid reports whether all corners are finite, within lon [-180,180] and
// lat [-90,90], and min <= max on both axes.
func (b BBox) Valid() bool {
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, lon := range []float64{b[0], b[2]} {
		if lon < -180 || lon > 180 {
			return false
		}
	}
	for _, lat := range []float64{b[1], b[3]} {
		if lat < -90 || lat > 90 {
			return false
		}
	}
	return b[0] <= b[2] && b[1] <= b[3]
}

// Center returns the center point as (lat, lon).
func (b BBox) Center() (lat, lon float64) {
	return (b[1] + b[3]) / 2, (b[0] + b[2]) / 2
}

// UnmarshalJSON accepts exactly four numbers. Anything else is an error;
// Record.UnmarshalJSON turns that into a nil box.
func (b *BBox) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if len(coords) != 4 {
		return fmt.Errorf("bbox: expected 4 coordinates, got %d", len(coords))
	}
	copy(b[:], coords)
	return nil
}

// UnmarshalJSON decodes a record. A malformed bbox leaves BBox nil instead
// of failing the whole record.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		BBox json.RawMessage `json:"bbox"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.BBox = nil
	raw := bytes.TrimSpace(aux.BBox)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var b BBox
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	r.BBox = &b
	return nil
}

// Sanitize drops a bounding box that fails Valid. It reports whether
// the record has a usable identity.
func (r *Record) Sanitize() bool {
	if r.BBox != nil && !r.BBox.Valid() {
		r.BBox = nil
	}
	return r.GlobalParcelUID != ""
}

// CountyCode returns the internal county code for the record.
func (r *Record) CountyCode() string {
	return CodeFor(r.County, r.State)
}

// Field names a searchable record field.
type Field string

const (
	FieldOwner           Field = "owner"
	FieldPIDN            Field = "pidn"
	FieldMailingAddress  Field = "mailing_address"
	FieldPhysicalAddress Field = "physical_address"
	FieldCounty          Field = "county"
)

// SearchableFields lists the fields a search can be scoped to.
var SearchableFields = []Field{
	FieldOwner,
	FieldPIDN,
	FieldMailingAddress,
	FieldPhysicalAddress,
	FieldCounty,
}

// ParseField validates a field name.
func ParseField(name string) (Field, error) {
	for _, f := range SearchableFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown search field %q", name)
}

// Value returns the raw value of a searchable field.
func (r *Record) Value(f Field) string {
	switch f {
	case FieldOwner:
		return r.Owner
	case FieldPIDN:
		return r.PIDN
	case FieldMailingAddress:
		return r.MailingAddress
	case FieldPhysicalAddress:
		return r.PhysicalAddress
	case FieldCounty:
		return r.County
	}
	return ""
}

package search

import (
	"github.com/countygis/parcels/pkg/record"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// distanceKm returns the great-circle distance between two points.
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2}) / 1000
}

// proximityBonus scores how close the center of a parcel's bounding box is
// to the hint. Parcels without a box get nothing.
func proximityBonus(near *Point, bbox *record.BBox) int {
	if near == nil || bbox == nil {
		return 0
	}
	lat, lon := bbox.Center()
	switch d := distanceKm(near.Lat, near.Lon, lat, lon); {
	case d <= 1:
		return 1000
	case d <= 10:
		return 500
	case d <= 50:
		return 100
	}
	return 0
}

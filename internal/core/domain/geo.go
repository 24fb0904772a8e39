package domain

import "github.com/anishmaharjan/caremap/internal/pkg/geospatial"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns the canonical 6-decimal coordinate key for this point.
func (p GeoPoint) Key() string {
	return geospatial.Key(p.Lat, p.Lon)
}

// DistanceKm returns the great-circle distance to another point in kilometres.
func (p GeoPoint) DistanceKm(other GeoPoint) float64 {
	return geospatial.DistanceKm(p.Lat, p.Lon, other.Lat, other.Lon)
}

// IsZero reports whether the point carries no usable coordinate. The null
// island origin counts as unusable, matching how the source data encodes
// missing positions.
func (p GeoPoint) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}

package geospatial

import "fmt"

// Key returns the canonical identity string for a coordinate pair.
// Both values are fixed to 6 decimal places (~0.11 m), so two points that
// differ only past the 6th decimal share a key. That is the dedup tolerance
// the whole merge protocol relies on.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.6f|%.6f", lat, lon)
}

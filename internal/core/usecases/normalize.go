package usecases

import (
	"strings"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// UnnamedHospital is the display name used when the source record has none.
const UnnamedHospital = "Unnamed Hospital"

// NormalizeElements maps raw provider elements into hospitals. Records
// without a usable coordinate are skipped; one bad record never aborts the
// batch. Output order follows input order but carries no guarantee.
func NormalizeElements(elements []domain.SourceElement) []domain.Hospital {
	hospitals := make([]domain.Hospital, 0, len(elements))
	for _, el := range elements {
		h, ok := normalizeElement(el)
		if !ok {
			continue
		}
		hospitals = append(hospitals, h)
	}
	return hospitals
}

func normalizeElement(el domain.SourceElement) (domain.Hospital, bool) {
	loc, ok := resolveLocation(el)
	if !ok {
		return domain.Hospital{}, false
	}

	return domain.Hospital{
		Name:               tagOr(el.Tags, UnnamedHospital, "name"),
		Address:            resolveAddress(el.Tags),
		Location:           loc,
		Phone:              tagOr(el.Tags, "", "phone", "contact:phone"),
		Specialities:       tagOr(el.Tags, "", "healthcare:speciality", "healthcare"),
		EmergencyAvailable: truthy(el.Tags["emergency"]),
	}, true
}

// resolveLocation prefers the element's direct coordinate and falls back to
// the center field that ways and relations expose.
func resolveLocation(el domain.SourceElement) (domain.GeoPoint, bool) {
	if el.Lat != nil && el.Lon != nil {
		p := domain.GeoPoint{Lat: *el.Lat, Lon: *el.Lon}
		if !p.IsZero() {
			return p, true
		}
	}
	if el.Center != nil && !el.Center.IsZero() {
		return *el.Center, true
	}
	return domain.GeoPoint{}, false
}

// resolveAddress builds an address from a priority-ordered fallback chain:
// full address tag, then street/housenumber/city joined, then description.
func resolveAddress(tags map[string]string) string {
	if full := tags["addr:full"]; full != "" {
		return full
	}

	var parts []string
	for _, key := range []string{"addr:street", "addr:housenumber", "addr:city"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}

	return tags["description"]
}

func tagOr(tags map[string]string, fallback string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return fallback
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

package usecases_test

import (
	"testing"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
)

func TestDedupeByCoordinate_LastWins(t *testing.T) {
	hospitals := []domain.Hospital{
		{Name: "A", Location: domain.GeoPoint{Lat: 40.0, Lon: -73.0}},
		{Name: "B", Location: domain.GeoPoint{Lat: 40.000001, Lon: -73.000001}}, // distinct key
		{Name: "C", Location: domain.GeoPoint{Lat: 40.0000004, Lon: -73.0000004}}, // same key as A
	}

	out := usecases.DedupeByCoordinate(hospitals)
	if len(out) != 2 {
		t.Fatalf("expected 2 hospitals, got %d", len(out))
	}

	byKey := map[string]domain.Hospital{}
	for _, h := range out {
		byKey[h.Key()] = h
	}
	if got := byKey["40.000000|-73.000000"].Name; got != "C" {
		t.Errorf("last occurrence should win, got %q", got)
	}
	if got := byKey["40.000001|-73.000001"].Name; got != "B" {
		t.Errorf("distinct key lost, got %q", got)
	}
}

func TestDedupeByCoordinate_DistinctCountPreserved(t *testing.T) {
	// 6 records, 3 distinct keys.
	hospitals := []domain.Hospital{
		{Name: "a1", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
		{Name: "b1", Location: domain.GeoPoint{Lat: 2, Lon: 2}},
		{Name: "a2", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
		{Name: "c1", Location: domain.GeoPoint{Lat: 3, Lon: 3}},
		{Name: "b2", Location: domain.GeoPoint{Lat: 2, Lon: 2}},
		{Name: "a3", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
	}

	out := usecases.DedupeByCoordinate(hospitals)
	if len(out) != 3 {
		t.Fatalf("expected 3 distinct hospitals, got %d", len(out))
	}
	for _, h := range out {
		switch h.Key() {
		case (domain.GeoPoint{Lat: 1, Lon: 1}).Key():
			if h.Name != "a3" {
				t.Errorf("expected a3, got %q", h.Name)
			}
		case (domain.GeoPoint{Lat: 2, Lon: 2}).Key():
			if h.Name != "b2" {
				t.Errorf("expected b2, got %q", h.Name)
			}
		case (domain.GeoPoint{Lat: 3, Lon: 3}).Key():
			if h.Name != "c1" {
				t.Errorf("expected c1, got %q", h.Name)
			}
		}
	}
}

func TestDedupeByCoordinate_Empty(t *testing.T) {
	if out := usecases.DedupeByCoordinate(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %d", len(out))
	}
}

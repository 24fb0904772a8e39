package usecases_test

import (
	"context"
	"testing"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
)

func TestRankByDistance_ClosestFirst(t *testing.T) {
	origin := domain.GeoPoint{Lat: 43.263, Lon: -2.935} // Bilbao
	hospitals := []domain.Hospital{
		{Name: "Madrid", Location: domain.GeoPoint{Lat: 40.4168, Lon: -3.7038}},
		{Name: "Local", Location: domain.GeoPoint{Lat: 43.264, Lon: -2.936}},
		{Name: "Vitoria", Location: domain.GeoPoint{Lat: 42.8467, Lon: -2.6716}},
	}

	ranked := usecases.RankByDistance(hospitals, origin)

	want := []string{"Local", "Vitoria", "Madrid"}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Name, name)
		}
		if ranked[i].Distance == nil {
			t.Errorf("ranked[%d] has no distance", i)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if *ranked[i].Distance < *ranked[i-1].Distance {
			t.Errorf("distances not ascending at %d", i)
		}
	}
	// Input untouched.
	if hospitals[0].Name != "Madrid" {
		t.Error("ranking must not reorder the input slice")
	}
}

func TestRankByDistance_StableForEquidistant(t *testing.T) {
	origin := domain.GeoPoint{}
	same := domain.GeoPoint{Lat: 1, Lon: 1}
	hospitals := []domain.Hospital{
		{Name: "First", Location: same},
		{Name: "Second", Location: same},
	}

	ranked := usecases.RankByDistance(hospitals, origin)
	if ranked[0].Name != "First" || ranked[1].Name != "Second" {
		t.Error("equidistant records must keep input order")
	}
}

func TestHospitalService_NearbyClampsRadiusAndLimit(t *testing.T) {
	var gotRadius float64
	var gotLimit int
	repo := &mockHospitalRepo{
		findNearbyFn: func(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error) {
			gotRadius = radiusKm
			gotLimit = limit
			return nil, nil
		},
	}
	svc := usecases.NewHospitalService(repo, nil)

	if _, err := svc.Nearby(context.Background(), 43.2, -2.9, 9999, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRadius != usecases.DefaultSearchRadiusKm {
		t.Errorf("radius = %v, want clamped to %v", gotRadius, usecases.DefaultSearchRadiusKm)
	}
	if gotLimit != 50 {
		t.Errorf("limit = %d, want clamped to 50", gotLimit)
	}
}

func TestHospitalService_NearbyFillsDistances(t *testing.T) {
	repo := &mockHospitalRepo{
		findNearbyFn: func(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error) {
			return []domain.Hospital{
				{Name: "Far", Location: domain.GeoPoint{Lat: lat + 0.2, Lon: lon}},
				{Name: "Near", Location: domain.GeoPoint{Lat: lat + 0.01, Lon: lon}},
			}, nil
		},
	}
	svc := usecases.NewHospitalService(repo, nil)

	got, err := svc.Nearby(context.Background(), 43.2, -2.9, 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Near" {
		t.Fatalf("got %+v, want Near first", got)
	}
	if got[0].Distance == nil || got[1].Distance == nil {
		t.Fatal("distances not filled")
	}
}

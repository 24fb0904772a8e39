package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/ports"
)

// HospitalService handles hospital queries and proximity ranking.
type HospitalService struct {
	hospitals ports.HospitalRepository
	cache     ports.CacheService
}

// NewHospitalService creates a new HospitalService.
func NewHospitalService(hospitals ports.HospitalRepository, cache ports.CacheService) *HospitalService {
	return &HospitalService{hospitals: hospitals, cache: cache}
}

// Nearby returns hospitals within radiusKm of the given point, closest
// first, with the distance field filled in.
func (s *HospitalService) Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error) {
	if radiusKm <= 0 || radiusKm > DefaultSearchRadiusKm {
		radiusKm = DefaultSearchRadiusKm
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// Try cache. Keys include a generation counter bumped after each sync
	// run so results never outlive a reconcile.
	cacheKey := s.nearbyKey(ctx, lat, lon, radiusKm, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var hospitals []domain.Hospital
			if err := json.Unmarshal(data, &hospitals); err == nil {
				return hospitals, nil
			}
		}
	}

	hospitals, err := s.hospitals.FindNearby(ctx, lat, lon, radiusKm, limit)
	if err != nil {
		return nil, err
	}
	hospitals = RankByDistance(hospitals, domain.GeoPoint{Lat: lat, Lon: lon})
	if len(hospitals) > limit {
		hospitals = hospitals[:limit]
	}

	// Cache for 5 minutes
	if s.cache != nil {
		if data, err := json.Marshal(hospitals); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return hospitals, nil
}

// GetByID returns a single hospital.
func (s *HospitalService) GetByID(ctx context.Context, id string) (*domain.Hospital, error) {
	return s.hospitals.GetByID(ctx, id)
}

func (s *HospitalService) nearbyKey(ctx context.Context, lat, lon, radiusKm float64, limit int) string {
	gen := ""
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, "hospitals:gen"); err == nil {
			gen = string(data)
		}
	}
	return fmt.Sprintf("hospitals:nearby:%s:%.4f:%.4f:%.0f:%d", gen, lat, lon, radiusKm, limit)
}

// RankByDistance sorts hospitals by great-circle distance from the origin,
// filling in each record's distance field. Sort is stable so equidistant
// records keep their input order.
func RankByDistance(hospitals []domain.Hospital, origin domain.GeoPoint) []domain.Hospital {
	ranked := make([]domain.Hospital, len(hospitals))
	for i, h := range hospitals {
		d := origin.DistanceKm(h.Location)
		h.Distance = &d
		ranked[i] = h
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Distance < *ranked[j].Distance
	})
	return ranked
}

package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// ErrNoResults is returned when the geocoder knows no place by that name.
var ErrNoResults = errors.New("no geocoding results")

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// geocodeAPI is the slice of *maps.Client the service needs.
type geocodeAPI interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GeocodeService resolves place names through the Google Maps Geocoding API.
type GeocodeService struct {
	client geocodeAPI
	cache  GeoCache
	ttl    time.Duration
}

// NewGeocodeService creates a GeocodeService with the given API key.
// cache may be nil to disable caching.
func NewGeocodeService(apiKey string, cache GeoCache, ttl time.Duration) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newGeocodeService(client, cache, ttl), nil
}

func newGeocodeService(client geocodeAPI, cache GeoCache, ttl time.Duration) *GeocodeService {
	if cache == nil {
		cache = noCache{}
	}
	return &GeocodeService{client: client, cache: cache, ttl: ttl}
}

// Resolve returns the coordinates of place, searched as "place, near" when near is set.
// Cache errors degrade to a live lookup.
func (s *GeocodeService) Resolve(ctx context.Context, place, near string) (float64, float64, error) {
	address := strings.TrimSpace(place)
	if address == "" {
		return 0, 0, ErrNoResults
	}
	if near = strings.TrimSpace(near); near != "" && !strings.Contains(strings.ToLower(address), strings.ToLower(near)) {
		address = address + ", " + near
	}

	key := cacheKey(address)
	if p, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return p.Lat, p.Lng, nil
	}

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("%w for %q", ErrNoResults, address)
	}

	loc := results[0].Geometry.Location
	p := Point{Lat: loc.Lat, Lng: loc.Lng}
	_ = s.cache.Set(ctx, key, p, s.ttl)
	return p.Lat, p.Lng, nil
}

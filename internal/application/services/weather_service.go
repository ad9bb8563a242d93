package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/observability"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

// weatherCacheTTLSeconds keeps site conditions fresh enough for a meeting
// form while absorbing repeated lookups for the same site.
const weatherCacheTTLSeconds = 30 * 60

// WeatherService resolves a free-text site address into current conditions
// for the meeting form.
type WeatherService struct {
	geo     providers.GeolocationProvider
	weather providers.WeatherProvider
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewWeatherService creates a new weather service
func NewWeatherService(geo providers.GeolocationProvider, weather providers.WeatherProvider, cache providers.CacheProvider, metrics *observability.Metrics) *WeatherService {
	return &WeatherService{
		geo:     geo,
		weather: weather,
		cache:   cache,
		metrics: metrics,
	}
}

// Geocode resolves a site address to coordinates.
func (s *WeatherService) Geocode(ctx context.Context, address string) (*entities.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, apperrors.NewValidationError("address is required")
	}
	return s.geo.Geocode(ctx, address)
}

// GetSiteWeather geocodes the address and fetches current conditions,
// caching by rounded coordinates.
func (s *WeatherService) GetSiteWeather(ctx context.Context, address string) (*entities.SiteWeather, error) {
	coords, err := s.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("weather:v1:%.4f:%.4f", coords.Latitude, coords.Longitude)
	if s.cache != nil {
		if cached, cacheErr := s.cache.Get(ctx, cacheKey); cacheErr == nil && len(cached) > 0 {
			var weather entities.SiteWeather
			if unmarshalErr := json.Unmarshal(cached, &weather); unmarshalErr == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, "site_weather")
				}
				return &weather, nil
			}
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, "site_weather")
		}
	}

	weather, err := s.weather.Current(ctx, *coords)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(weather); marshalErr == nil {
			_ = s.cache.Set(ctx, cacheKey, payload, weatherCacheTTLSeconds)
		}
	}

	return weather, nil
}

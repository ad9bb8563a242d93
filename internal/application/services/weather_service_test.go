package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebrief/toolboxtalk/backend/internal/adapters/providers/geolocation"
	"github.com/sitebrief/toolboxtalk/backend/internal/adapters/providers/weather"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

type memoryCache struct {
	store map[string][]byte
	gets  int
	sets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	value, ok := c.store[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("cache miss")
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.sets++
	c.store[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.store[key]
	return ok, nil
}

func TestWeatherService_GetSiteWeather(t *testing.T) {
	cache := newMemoryCache()
	weatherProvider := weather.NewMockWeatherProvider()
	weatherProvider.Weather = &entities.SiteWeather{
		WeatherConditions: "Light Snow",
		Temperature:       -4.0,
		RoadConditions:    "Icy or Snow Covered",
	}
	svc := NewWeatherService(geolocation.NewMockGeolocationProvider(), weatherProvider, cache, nil)

	result, err := svc.GetSiteWeather(context.Background(), "10230 Jasper Ave, Edmonton")
	require.NoError(t, err)
	assert.Equal(t, "Light Snow", result.WeatherConditions)
	assert.Equal(t, -4.0, result.Temperature)
	assert.Equal(t, 1, cache.sets)

	// Second call for the same site is served from cache.
	weatherProvider.Err = apperrors.NewExternalError("provider down", nil)
	cached, err := svc.GetSiteWeather(context.Background(), "10230 Jasper Ave, Edmonton")
	require.NoError(t, err)
	assert.Equal(t, "Light Snow", cached.WeatherConditions)
	assert.Equal(t, 1, cache.sets)
}

func TestWeatherService_GetSiteWeather_MissingAddress(t *testing.T) {
	svc := NewWeatherService(geolocation.NewMockGeolocationProvider(), weather.NewMockWeatherProvider(), newMemoryCache(), nil)

	_, err := svc.GetSiteWeather(context.Background(), "  ")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestWeatherService_GetSiteWeather_ProviderError(t *testing.T) {
	weatherProvider := weather.NewMockWeatherProvider()
	weatherProvider.Err = apperrors.NewExternalError("weather request failed", nil)
	svc := NewWeatherService(geolocation.NewMockGeolocationProvider(), weatherProvider, newMemoryCache(), nil)

	_, err := svc.GetSiteWeather(context.Background(), "Calgary site office")
	require.Error(t, err)
}

type failingGeocoder struct{}

func (failingGeocoder) Geocode(ctx context.Context, address string) (*entities.Coordinates, error) {
	return nil, apperrors.NewExternalError("geocoding failed: ZERO_RESULTS", nil)
}

type countingWeatherProvider struct {
	calls int
}

func (p *countingWeatherProvider) Current(ctx context.Context, coords entities.Coordinates) (*entities.SiteWeather, error) {
	p.calls++
	return &entities.SiteWeather{WeatherConditions: "Clear", Temperature: 18.5, RoadConditions: "Dry"}, nil
}

func TestWeatherService_GetSiteWeather_GeocodeFailureSkipsWeather(t *testing.T) {
	weatherProvider := &countingWeatherProvider{}
	svc := NewWeatherService(failingGeocoder{}, weatherProvider, newMemoryCache(), nil)

	_, err := svc.GetSiteWeather(context.Background(), "nowhere in particular")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
	assert.Zero(t, weatherProvider.calls)
}

func TestWeatherService_Geocode(t *testing.T) {
	svc := NewWeatherService(geolocation.NewMockGeolocationProvider(), weather.NewMockWeatherProvider(), newMemoryCache(), nil)

	coords, err := svc.Geocode(context.Background(), "Calgary yard")
	require.NoError(t, err)
	assert.InDelta(t, 51.0447, coords.Latitude, 0.001)
}

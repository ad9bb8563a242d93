package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

func TestTomorrowWeatherProvider_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Contains(t, r.URL.Query().Get("location"), "53.5461")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"values":{"temperature":-8.2,"weatherCode":5101,"precipitationProbability":85}}}`))
	}))
	defer server.Close()

	provider := NewTomorrowWeatherProviderWithOptions("test-key", server.URL, server.Client())

	weather, err := provider.Current(context.Background(), entities.Coordinates{Latitude: 53.5461, Longitude: -113.4938})
	require.NoError(t, err)
	assert.Equal(t, "Heavy Snow", weather.WeatherConditions)
	assert.Equal(t, -8.2, weather.Temperature)
	assert.Equal(t, "Icy or Snow Covered", weather.RoadConditions)
}

func TestTomorrowWeatherProvider_Current_RainyDay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"values":{"temperature":12.0,"weatherCode":4001,"precipitationProbability":72}}}`))
	}))
	defer server.Close()

	provider := NewTomorrowWeatherProviderWithOptions("test-key", server.URL, server.Client())

	weather, err := provider.Current(context.Background(), entities.Coordinates{Latitude: 43.65, Longitude: -79.38})
	require.NoError(t, err)
	assert.Equal(t, "Rain", weather.WeatherConditions)
	assert.Equal(t, "Wet and Slippery", weather.RoadConditions)
}

func TestTomorrowWeatherProvider_Current_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewTomorrowWeatherProviderWithOptions("test-key", server.URL, server.Client())

	_, err := provider.Current(context.Background(), entities.Coordinates{Latitude: 1, Longitude: 1})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
}

func TestTomorrowWeatherProvider_Current_MissingKey(t *testing.T) {
	provider := NewTomorrowWeatherProvider("")

	_, err := provider.Current(context.Background(), entities.Coordinates{Latitude: 1, Longitude: 1})
	require.Error(t, err)
}

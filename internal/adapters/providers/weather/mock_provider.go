package weather

import (
	"context"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
)

// MockWeatherProvider implements a mock weather provider for testing
type MockWeatherProvider struct {
	Weather *entities.SiteWeather
	Err     error
}

// NewMockWeatherProvider creates a new mock weather provider
func NewMockWeatherProvider() *MockWeatherProvider {
	return &MockWeatherProvider{
		Weather: &entities.SiteWeather{
			WeatherConditions: "Clear",
			Temperature:       18.5,
			RoadConditions:    "Dry",
		},
	}
}

var _ providers.WeatherProvider = (*MockWeatherProvider)(nil)

// Current returns the configured conditions regardless of coordinates.
func (m *MockWeatherProvider) Current(ctx context.Context, coords entities.Coordinates) (*entities.SiteWeather, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Weather, nil
}

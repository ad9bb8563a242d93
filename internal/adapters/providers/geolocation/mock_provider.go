package geolocation

import (
	"context"
	"strings"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
)

// MockGeolocationProvider implements a mock geolocation provider for testing
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

// Geocode converts an address to coordinates (mock implementation)
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*entities.Coordinates, error) {
	mockCoordinates := map[string]entities.Coordinates{
		"Edmonton": {Latitude: 53.5461, Longitude: -113.4938},
		"Calgary":  {Latitude: 51.0447, Longitude: -114.0719},
		"Toronto":  {Latitude: 43.6532, Longitude: -79.3832},
		"Houston":  {Latitude: 29.7604, Longitude: -95.3698},
		"Chicago":  {Latitude: 41.8781, Longitude: -87.6298},
	}

	for city, coords := range mockCoordinates {
		if strings.Contains(address, city) {
			c := coords
			return &c, nil
		}
	}

	// Default to downtown Edmonton
	return &entities.Coordinates{Latitude: 53.5461, Longitude: -113.4938}, nil
}

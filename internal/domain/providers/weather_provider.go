package providers

import (
	"context"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
)

// WeatherProvider returns current conditions for a coordinate pair.
type WeatherProvider interface {
	// Current fetches realtime conditions, including the derived road
	// condition classification.
	Current(ctx context.Context, coords entities.Coordinates) (*entities.SiteWeather, error)
}

package providers

import (
	"context"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
)

// GeolocationProvider turns a free-text site address into coordinates.
type GeolocationProvider interface {
	// Geocode converts an address to coordinates
	Geocode(ctx context.Context, address string) (*entities.Coordinates, error)
}

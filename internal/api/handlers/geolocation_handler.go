package handlers

import (
	"net/http"

	"github.com/sitebrief/toolboxtalk/backend/internal/application/services"
)

// GeolocationHandler handles geocoding HTTP requests
type GeolocationHandler struct {
	weatherService *services.WeatherService
}

// NewGeolocationHandler creates a new geolocation handler
func NewGeolocationHandler(weatherService *services.WeatherService) *GeolocationHandler {
	return &GeolocationHandler{weatherService: weatherService}
}

// Geocode handles GET /api/geocode?address=
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "address is required")
		return
	}

	coords, err := h.weatherService.Geocode(r.Context(), address)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, coords)
}

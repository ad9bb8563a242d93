package handlers

import (
	"net/http"

	"github.com/sitebrief/toolboxtalk/backend/internal/application/services"
)

// WeatherHandler handles site weather lookups for the meeting form
type WeatherHandler struct {
	weatherService *services.WeatherService
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(weatherService *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// GetSiteWeather handles GET /api/weather?address=
func (h *WeatherHandler) GetSiteWeather(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "address is required")
		return
	}

	weather, err := h.weatherService.GetSiteWeather(r.Context(), address)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, weather)
}

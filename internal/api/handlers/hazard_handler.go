package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sitebrief/toolboxtalk/backend/internal/application/services"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
)

// HazardHandler handles job hazard analysis HTTP requests
type HazardHandler struct {
	hazardService *services.HazardService
}

// NewHazardHandler creates a new hazard handler
func NewHazardHandler(hazardService *services.HazardService) *HazardHandler {
	return &HazardHandler{hazardService: hazardService}
}

type analyzeHazardsRequest struct {
	JobDescription    string   `json:"job_description"`
	WeatherConditions string   `json:"weather_conditions"`
	Temperature       *float64 `json:"temperature"`
	RoadConditions    string   `json:"road_conditions"`
}

// AnalyzeHazards handles POST /api/analyze-hazards
func (h *HazardHandler) AnalyzeHazards(w http.ResponseWriter, r *http.Request) {
	var req analyzeHazardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, err := h.hazardService.Analyze(r.Context(), providers.HazardAnalysisInput{
		JobDescription:    req.JobDescription,
		WeatherConditions: req.WeatherConditions,
		Temperature:       req.Temperature,
		RoadConditions:    req.RoadConditions,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, analysis)
}

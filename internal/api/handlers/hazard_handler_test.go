package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebrief/toolboxtalk/backend/internal/application/services"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

type fakeAnalyzer struct {
	analysis *entities.HazardAnalysis
	err      error
}

func (a fakeAnalyzer) AnalyzeHazards(ctx context.Context, input providers.HazardAnalysisInput) (*entities.HazardAnalysis, error) {
	return a.analysis, a.err
}

func TestAnalyzeHazards(t *testing.T) {
	analyzer := fakeAnalyzer{analysis: &entities.HazardAnalysis{
		Hazards:            entities.HazardFlags{OpenExcavation: true, MobileEquipment: true},
		AdditionalComments: "Watch for underground utilities.",
	}}
	handler := NewHazardHandler(services.NewHazardService(analyzer))

	body, _ := json.Marshal(map[string]interface{}{
		"job_description":    "Excavating a trench for a sewer tie-in",
		"weather_conditions": "Rain",
		"temperature":        8.5,
		"road_conditions":    "Wet and Slippery",
	})

	rec := httptest.NewRecorder()
	handler.AnalyzeHazards(rec, httptest.NewRequest(http.MethodPost, "/api/analyze-hazards", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var result entities.HazardAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Hazards.OpenExcavation)
	assert.Equal(t, "Watch for underground utilities.", result.AdditionalComments)
}

func TestAnalyzeHazards_MissingDescription(t *testing.T) {
	handler := NewHazardHandler(services.NewHazardService(fakeAnalyzer{}))

	body, _ := json.Marshal(map[string]interface{}{"job_description": ""})

	rec := httptest.NewRecorder()
	handler.AnalyzeHazards(rec, httptest.NewRequest(http.MethodPost, "/api/analyze-hazards", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHazards_ClassifierFailureStillSucceeds(t *testing.T) {
	analyzer := fakeAnalyzer{err: apperrors.NewExternalError("model unavailable", nil)}
	handler := NewHazardHandler(services.NewHazardService(analyzer))

	body, _ := json.Marshal(map[string]interface{}{"job_description": "Pouring a slab on grade"})

	rec := httptest.NewRecorder()
	handler.AnalyzeHazards(rec, httptest.NewRequest(http.MethodPost, "/api/analyze-hazards", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var result entities.HazardAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entities.HazardFlags{}, result.Hazards)
	assert.Contains(t, result.AdditionalComments, "identify hazards manually")
}

func TestAnalyzeHazards_InvalidBody(t *testing.T) {
	handler := NewHazardHandler(services.NewHazardService(fakeAnalyzer{}))

	rec := httptest.NewRecorder()
	handler.AnalyzeHazards(rec, httptest.NewRequest(http.MethodPost, "/api/analyze-hazards", bytes.NewReader([]byte("not json"))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

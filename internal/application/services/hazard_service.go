package services

import (
	"context"
	"strings"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/observability"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

// hazardFallbackComment is returned when the classifier cannot be reached or
// returns something unusable. All flags stay unchecked so the supervisor
// reviews the form manually.
const hazardFallbackComment = "Unable to automatically analyze hazards. Please review job details and identify hazards manually."

// HazardService classifies a job description into the fixed hazard flag set.
type HazardService struct {
	analyzer providers.HazardAnalyzer
}

// NewHazardService creates a new hazard service
func NewHazardService(analyzer providers.HazardAnalyzer) *HazardService {
	return &HazardService{analyzer: analyzer}
}

// Analyze runs the classifier. A missing job description is a validation
// error; any classifier failure degrades to the manual-review fallback
// rather than surfacing an error to the caller.
func (s *HazardService) Analyze(ctx context.Context, input providers.HazardAnalysisInput) (*entities.HazardAnalysis, error) {
	if strings.TrimSpace(input.JobDescription) == "" {
		return nil, apperrors.NewValidationError("job description is required")
	}

	analysis, err := s.analyzer.AnalyzeHazards(ctx, input)
	if err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Err(err).Msg("hazard analysis failed, returning fallback")
		return fallbackHazardAnalysis(err), nil
	}

	return analysis, nil
}

func fallbackHazardAnalysis(cause error) *entities.HazardAnalysis {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return &entities.HazardAnalysis{
		Hazards:            entities.HazardFlags{},
		AdditionalComments: hazardFallbackComment,
		Fallback:           true,
		FallbackReason:     reason,
	}
}

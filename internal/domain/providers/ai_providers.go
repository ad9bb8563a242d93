package providers

import (
	"context"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
)

// HazardAnalyzer classifies a job description into the fixed hazard flag set.
// Implementations may fail; the application layer substitutes the
// deterministic fallback.
type HazardAnalyzer interface {
	AnalyzeHazards(ctx context.Context, input HazardAnalysisInput) (*entities.HazardAnalysis, error)
}

// HazardAnalysisInput carries the job description plus the optional
// environmental context for the classifier prompt.
type HazardAnalysisInput struct {
	JobDescription    string
	WeatherConditions string
	Temperature       *float64
	RoadConditions    string
}

// SafetySearcher retrieves regulatory safety-standard text for a query via a
// web-search-augmented model scoped to a single regulatory domain.
type SafetySearcher interface {
	SearchSafetyStandards(ctx context.Context, query string) (*entities.SafetySearchResult, error)
}

// SummaryGenerator writes the HTML safety briefing for a meeting from the
// submitted form data and the retrieved standards.
type SummaryGenerator interface {
	GenerateSafetySummary(ctx context.Context, meeting *entities.Meeting, standards *entities.SafetySearchResult) (string, error)
}

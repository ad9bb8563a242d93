package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/repositories"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/observability"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

const (
	defaultSearchTimeout = 20 * time.Second

	standardsFailureResult = "Unable to fetch safety standards. Please review safety requirements manually."
	standardsTimeoutResult = "Safety standards search timed out. Please review safety requirements manually."
	summaryFailureResult   = "Error generating safety summary. Please create a safety plan manually."

	defaultPageLimit = 10
	maxPageLimit     = 100
)

// MeetingList is one page of an owner's meetings with pagination totals.
type MeetingList struct {
	Meetings   []*entities.Meeting `json:"meetings"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

// MeetingService orchestrates meeting creation: standards retrieval, safety
// briefing generation and persistence. Retrieval and generation degrade to
// deterministic fallbacks; only the insert can fail the request.
type MeetingService struct {
	repo          repositories.MeetingRepository
	searcher      providers.SafetySearcher
	summarizer    providers.SummaryGenerator
	searchTimeout time.Duration
}

// NewMeetingService creates a new meeting service
func NewMeetingService(repo repositories.MeetingRepository, searcher providers.SafetySearcher, summarizer providers.SummaryGenerator) *MeetingService {
	return &MeetingService{
		repo:          repo,
		searcher:      searcher,
		summarizer:    summarizer,
		searchTimeout: defaultSearchTimeout,
	}
}

// WithSearchTimeout overrides the standards retrieval deadline (used for tests).
func (s *MeetingService) WithSearchTimeout(d time.Duration) *MeetingService {
	s.searchTimeout = d
	return s
}

// Create enriches the submitted form with safety standards and a generated
// briefing, then persists the record under the caller's identity.
func (s *MeetingService) Create(ctx context.Context, user *entities.User, meeting *entities.Meeting) (*entities.Meeting, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}
	if meeting == nil {
		return nil, apperrors.NewValidationError("meeting payload is required")
	}
	if meeting.UserID != user.ID {
		return nil, apperrors.NewForbiddenError("User ID mismatch")
	}

	logger := observability.LoggerFromContext(ctx)

	standards := s.fetchStandards(ctx, buildStandardsQuery(meeting))
	if standards.Fallback {
		logger.Warn().Str("reason", standards.FallbackReason).Msg("using fallback safety standards")
	}

	summary, err := s.summarizer.GenerateSafetySummary(ctx, meeting, standards)
	if err != nil {
		logger.Warn().Err(err).Msg("safety summary generation failed, using fallback")
		summary = summaryFailureResult
	}

	now := time.Now().UTC()
	meeting.ID = uuid.New().String()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	meeting.AISafetySummary = summary
	meeting.SafetyStandards = standards.Result
	meeting.SafetyStandardsSources = standards.Sources
	meeting.SafetyStandardsMetadata = standards.Metadata

	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, err
	}

	return meeting, nil
}

// List returns one page of the caller's meetings, newest first.
func (s *MeetingService) List(ctx context.Context, user *entities.User, limit, page int) (*MeetingList, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page <= 0 {
		page = 1
	}

	meetings, total, err := s.repo.ListByOwner(ctx, user.ID, repositories.MeetingFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	if meetings == nil {
		meetings = []*entities.Meeting{}
	}

	return &MeetingList{
		Meetings:   meetings,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Get retrieves one of the caller's meetings. A record owned by someone else
// is indistinguishable from a missing one.
func (s *MeetingService) Get(ctx context.Context, user *entities.User, id string) (*entities.Meeting, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("meeting id is required")
	}
	return s.repo.GetByIDAndOwner(ctx, id, user.ID)
}

// UpdateSummary replaces the stored safety briefing HTML for one meeting.
func (s *MeetingService) UpdateSummary(ctx context.Context, user *entities.User, id, summary string) error {
	if user == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("meeting id is required")
	}
	return s.repo.UpdateSummary(ctx, id, user.ID, summary)
}

// fetchStandards races the retrieval against the search deadline. The loser
// is cancelled rather than left running. Errors and timeouts both degrade to
// a tagged fallback result so creation never fails on retrieval.
func (s *MeetingService) fetchStandards(ctx context.Context, query string) *entities.SafetySearchResult {
	searchCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	type searchOutcome struct {
		result *entities.SafetySearchResult
		err    error
	}

	outcome := make(chan searchOutcome, 1)
	go func() {
		result, err := s.searcher.SearchSafetyStandards(searchCtx, query)
		outcome <- searchOutcome{result: result, err: err}
	}()

	select {
	case o := <-outcome:
		if o.err != nil {
			return fallbackStandards(standardsFailureResult, o.err)
		}
		return o.result
	case <-searchCtx.Done():
		if errors.Is(searchCtx.Err(), context.DeadlineExceeded) {
			return fallbackStandards(standardsTimeoutResult, searchCtx.Err())
		}
		return fallbackStandards(standardsFailureResult, searchCtx.Err())
	}
}

// buildStandardsQuery joins the job title, description and checked hazard
// names into the retrieval query.
func buildStandardsQuery(meeting *entities.Meeting) string {
	return meeting.JobTitle + " " + meeting.JobDescription + " " + strings.Join(meeting.Hazards.ActiveNames(), ", ")
}

func fallbackStandards(result string, cause error) *entities.SafetySearchResult {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return &entities.SafetySearchResult{
		Result:  result,
		Sources: []entities.SafetySource{},
		Metadata: entities.SafetyMetadata{
			Timestamp: time.Now().UTC(),
		},
		Fallback:       true,
		FallbackReason: reason,
	}
}

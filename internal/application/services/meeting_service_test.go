package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/repositories"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

type stubMeetingRepo struct {
	created     *entities.Meeting
	createErr   error
	meetings    []*entities.Meeting
	total       int
	listErr     error
	gotFilter   repositories.MeetingFilter
	byID        *entities.Meeting
	byIDErr     error
	summaryID   string
	summaryHTML string
	summaryErr  error
}

func (r *stubMeetingRepo) Create(ctx context.Context, m *entities.Meeting) error {
	r.created = m
	return r.createErr
}

func (r *stubMeetingRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (*entities.Meeting, error) {
	if r.byIDErr != nil {
		return nil, r.byIDErr
	}
	return r.byID, nil
}

func (r *stubMeetingRepo) ListByOwner(ctx context.Context, userID string, filter repositories.MeetingFilter) ([]*entities.Meeting, int, error) {
	r.gotFilter = filter
	return r.meetings, r.total, r.listErr
}

func (r *stubMeetingRepo) UpdateSummary(ctx context.Context, id, userID, summary string) error {
	r.summaryID = id
	r.summaryHTML = summary
	return r.summaryErr
}

type stubSearcher struct {
	result *entities.SafetySearchResult
	err    error
	delay  time.Duration
	query  string
}

func (s *stubSearcher) SearchSafetyStandards(ctx context.Context, query string) (*entities.SafetySearchResult, error) {
	s.query = query
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.result, s.err
}

type stubSummarizer struct {
	summary      string
	err          error
	gotStandards *entities.SafetySearchResult
}

func (s *stubSummarizer) GenerateSafetySummary(ctx context.Context, meeting *entities.Meeting, standards *entities.SafetySearchResult) (string, error) {
	s.gotStandards = standards
	return s.summary, s.err
}

func testUser() *entities.User {
	return &entities.User{ID: "user-1", Email: "foreman@example.com"}
}

func testMeetingPayload() *entities.Meeting {
	return &entities.Meeting{
		UserID:         "user-1",
		JobTitle:       "Roof deck replacement",
		JobDescription: "Remove and replace the roof deck on building C",
		Hazards: entities.HazardFlags{
			WorkingAtHeights: true,
			HandPowerTools:   true,
		},
	}
}

func TestMeetingService_Create(t *testing.T) {
	repo := &stubMeetingRepo{}
	searcher := &stubSearcher{result: &entities.SafetySearchResult{
		Result:  `[{"title":"Fall Protection"}]`,
		Sources: []entities.SafetySource{{SourceType: "url", ID: "source-1", URL: "https://example.com"}},
	}}
	summarizer := &stubSummarizer{summary: "<h2>Safety Plan</h2>"}
	svc := NewMeetingService(repo, searcher, summarizer)

	created, err := svc.Create(context.Background(), testUser(), testMeetingPayload())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "<h2>Safety Plan</h2>", created.AISafetySummary)
	assert.Equal(t, `[{"title":"Fall Protection"}]`, created.SafetyStandards)
	assert.Len(t, created.SafetyStandardsSources, 1)
	assert.Same(t, created, repo.created)

	assert.Equal(t, "Roof deck replacement Remove and replace the roof deck on building C hand power tools, working at heights", searcher.query)
}

func TestMeetingService_Create_UserIDMismatch(t *testing.T) {
	repo := &stubMeetingRepo{}
	svc := NewMeetingService(repo, &stubSearcher{}, &stubSummarizer{})

	payload := testMeetingPayload()
	payload.UserID = "someone-else"

	_, err := svc.Create(context.Background(), testUser(), payload)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeForbidden, appErr.Type)
	assert.Equal(t, "User ID mismatch", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestMeetingService_Create_SearchFailureUsesFallback(t *testing.T) {
	repo := &stubMeetingRepo{}
	searcher := &stubSearcher{err: apperrors.NewExternalError("safety search failed", nil)}
	summarizer := &stubSummarizer{summary: "<h2>Plan</h2>"}
	svc := NewMeetingService(repo, searcher, summarizer)

	created, err := svc.Create(context.Background(), testUser(), testMeetingPayload())
	require.NoError(t, err)

	assert.Equal(t, "Unable to fetch safety standards. Please review safety requirements manually.", created.SafetyStandards)
	assert.Empty(t, created.SafetyStandardsSources)
	assert.False(t, created.SafetyStandardsMetadata.Timestamp.IsZero())
	require.NotNil(t, summarizer.gotStandards)
	assert.True(t, summarizer.gotStandards.Fallback)
}

func TestMeetingService_Create_SearchTimeoutUsesTimeoutFallback(t *testing.T) {
	repo := &stubMeetingRepo{}
	searcher := &stubSearcher{
		result: &entities.SafetySearchResult{Result: "too late"},
		delay:  200 * time.Millisecond,
	}
	summarizer := &stubSummarizer{summary: "<h2>Plan</h2>"}
	svc := NewMeetingService(repo, searcher, summarizer).WithSearchTimeout(20 * time.Millisecond)

	created, err := svc.Create(context.Background(), testUser(), testMeetingPayload())
	require.NoError(t, err)

	assert.Equal(t, "Safety standards search timed out. Please review safety requirements manually.", created.SafetyStandards)
}

func TestMeetingService_Create_SummaryFailureUsesFallback(t *testing.T) {
	repo := &stubMeetingRepo{}
	searcher := &stubSearcher{result: &entities.SafetySearchResult{Result: "standards"}}
	summarizer := &stubSummarizer{err: apperrors.NewExternalError("model unavailable", nil)}
	svc := NewMeetingService(repo, searcher, summarizer)

	created, err := svc.Create(context.Background(), testUser(), testMeetingPayload())
	require.NoError(t, err)

	assert.Equal(t, "Error generating safety summary. Please create a safety plan manually.", created.AISafetySummary)
	assert.Equal(t, "standards", created.SafetyStandards)
}

func TestMeetingService_Create_InsertFailureFailsRequest(t *testing.T) {
	repo := &stubMeetingRepo{createErr: apperrors.NewInternalError("insert failed", nil)}
	searcher := &stubSearcher{result: &entities.SafetySearchResult{Result: "standards"}}
	summarizer := &stubSummarizer{summary: "<h2>Plan</h2>"}
	svc := NewMeetingService(repo, searcher, summarizer)

	_, err := svc.Create(context.Background(), testUser(), testMeetingPayload())
	require.Error(t, err)
}

func TestMeetingService_List(t *testing.T) {
	repo := &stubMeetingRepo{
		meetings: []*entities.Meeting{{ID: "m1"}, {ID: "m2"}},
		total:    25,
	}
	svc := NewMeetingService(repo, &stubSearcher{}, &stubSummarizer{})

	list, err := svc.List(context.Background(), testUser(), 10, 3)
	require.NoError(t, err)

	assert.Equal(t, 25, list.Total)
	assert.Equal(t, 3, list.Page)
	assert.Equal(t, 10, list.Limit)
	assert.Equal(t, 3, list.TotalPages)
	assert.Equal(t, 20, repo.gotFilter.Offset)
	assert.Equal(t, 10, repo.gotFilter.Limit)
}

func TestMeetingService_List_DefaultsAndEmptyPage(t *testing.T) {
	repo := &stubMeetingRepo{meetings: nil, total: 0}
	svc := NewMeetingService(repo, &stubSearcher{}, &stubSummarizer{})

	list, err := svc.List(context.Background(), testUser(), 0, 0)
	require.NoError(t, err)

	assert.NotNil(t, list.Meetings)
	assert.Empty(t, list.Meetings)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 10, list.Limit)
	assert.Equal(t, 0, list.TotalPages)
	assert.Equal(t, 0, repo.gotFilter.Offset)
}

func TestMeetingService_Get_NotFound(t *testing.T) {
	repo := &stubMeetingRepo{byIDErr: apperrors.NewNotFoundError("meeting not found")}
	svc := NewMeetingService(repo, &stubSearcher{}, &stubSummarizer{})

	_, err := svc.Get(context.Background(), testUser(), "missing")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestMeetingService_UpdateSummary(t *testing.T) {
	repo := &stubMeetingRepo{}
	svc := NewMeetingService(repo, &stubSearcher{}, &stubSummarizer{})

	err := svc.UpdateSummary(context.Background(), testUser(), "m1", "<p>edited</p>")
	require.NoError(t, err)
	assert.Equal(t, "m1", repo.summaryID)
	assert.Equal(t, "<p>edited</p>", repo.summaryHTML)
}

func TestMeetingService_RequiresUser(t *testing.T) {
	svc := NewMeetingService(&stubMeetingRepo{}, &stubSearcher{}, &stubSummarizer{})

	_, err := svc.Create(context.Background(), nil, testMeetingPayload())
	require.Error(t, err)

	_, err = svc.List(context.Background(), nil, 10, 1)
	require.Error(t, err)

	_, err = svc.Get(context.Background(), nil, "m1")
	require.Error(t, err)

	err = svc.UpdateSummary(context.Background(), nil, "m1", "html")
	require.Error(t, err)
}

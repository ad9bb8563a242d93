package repositories

import (
	"context"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
)

// MeetingRepository defines the interface for toolbox meeting persistence.
// Ownership is part of every lookup predicate, not a post-check: reads for a
// record the caller does not own behave as not-found.
type MeetingRepository interface {
	// Create inserts a new meeting record
	Create(ctx context.Context, meeting *entities.Meeting) error

	// GetByIDAndOwner retrieves a meeting by id scoped to its owner
	GetByIDAndOwner(ctx context.Context, id, userID string) (*entities.Meeting, error)

	// ListByOwner retrieves a page of the owner's meetings ordered by
	// creation time descending, plus the exact total count
	ListByOwner(ctx context.Context, userID string, filter MeetingFilter) ([]*entities.Meeting, int, error)

	// UpdateSummary updates the ai_safety_summary field of one record
	UpdateSummary(ctx context.Context, id, userID, summary string) error
}

// MeetingFilter defines pagination for listing meetings
type MeetingFilter struct {
	Limit  int
	Offset int
}

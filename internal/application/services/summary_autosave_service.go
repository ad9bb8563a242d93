package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/repositories"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

// defaultIdleInterval matches the edit debounce used by the summary editor.
const defaultIdleInterval = 1500 * time.Millisecond

// SummaryAutosaveService debounces summary edits per meeting and writes the
// latest HTML after the idle interval, or immediately on an explicit flush.
// Writes for the same meeting never overlap; while one is in flight the next
// pending edit waits for it to finish. Last write wins.
type SummaryAutosaveService struct {
	repo         repositories.MeetingRepository
	idleInterval time.Duration
	logger       zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingSummary
	closed  bool
}

type pendingSummary struct {
	userID   string
	html     string
	dirty    bool
	timer    *time.Timer
	inFlight bool
	done     chan struct{}
}

// NewSummaryAutosaveService creates a new summary autosave service
func NewSummaryAutosaveService(repo repositories.MeetingRepository, logger zerolog.Logger) *SummaryAutosaveService {
	return &SummaryAutosaveService{
		repo:         repo,
		idleInterval: defaultIdleInterval,
		logger:       logger,
		pending:      make(map[string]*pendingSummary),
	}
}

// WithIdleInterval overrides the flush delay (used for tests).
func (s *SummaryAutosaveService) WithIdleInterval(d time.Duration) *SummaryAutosaveService {
	s.idleInterval = d
	return s
}

// Queue records an edit and (re)arms the idle timer for that meeting.
func (s *SummaryAutosaveService) Queue(user *entities.User, meetingID, html string) error {
	if user == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if meetingID == "" {
		return apperrors.NewValidationError("meeting id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.NewInternalError("autosave service is shut down", nil)
	}

	entry, ok := s.pending[meetingID]
	if !ok {
		entry = &pendingSummary{}
		s.pending[meetingID] = entry
	}
	entry.userID = user.ID
	entry.html = html
	entry.dirty = true

	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.timer = time.AfterFunc(s.idleInterval, func() {
		s.flush(meetingID)
	})

	return nil
}

// Flush writes the given edit immediately, superseding anything queued for
// the meeting. It takes the same per-meeting in-flight guard as the timer
// path, waiting out any write already in progress so the two never overlap
// and an older timer write cannot land after this one. It returns the
// repository error so the handler can report it.
func (s *SummaryAutosaveService) Flush(ctx context.Context, user *entities.User, meetingID, html string) error {
	if user == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if meetingID == "" {
		return apperrors.NewValidationError("meeting id is required")
	}

	s.mu.Lock()
	var entry *pendingSummary
	for {
		e, ok := s.pending[meetingID]
		if !ok {
			e = &pendingSummary{}
			s.pending[meetingID] = e
		}
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.dirty = false
		if !e.inFlight {
			e.inFlight = true
			e.done = make(chan struct{})
			entry = e
			break
		}
		done := e.done
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	done := entry.done
	s.mu.Unlock()

	err := s.repo.UpdateSummary(ctx, meetingID, user.ID, html)

	s.mu.Lock()
	entry.inFlight = false
	close(done)
	redo := entry.dirty
	if !redo && s.pending[meetingID] == entry {
		delete(s.pending, meetingID)
	}
	s.mu.Unlock()

	if redo {
		go s.flush(meetingID)
	}
	return err
}

// Shutdown stops all timers and writes out anything still dirty.
func (s *SummaryAutosaveService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	s.closed = true
	var remaining []struct {
		meetingID string
		userID    string
		html      string
	}
	for id, entry := range s.pending {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		if entry.dirty {
			remaining = append(remaining, struct {
				meetingID string
				userID    string
				html      string
			}{id, entry.userID, entry.html})
		}
	}
	s.pending = make(map[string]*pendingSummary)
	s.mu.Unlock()

	for _, r := range remaining {
		if err := s.repo.UpdateSummary(ctx, r.meetingID, r.userID, r.html); err != nil {
			s.logger.Error().Err(err).Str("meeting_id", r.meetingID).Msg("failed to flush summary on shutdown")
		}
	}
}

// flush runs on the idle timer. If a write is already in flight the edit
// stays dirty and is picked up when that write completes.
func (s *SummaryAutosaveService) flush(meetingID string) {
	s.mu.Lock()
	entry, ok := s.pending[meetingID]
	if !ok || !entry.dirty || entry.inFlight || s.closed {
		s.mu.Unlock()
		return
	}
	entry.inFlight = true
	entry.done = make(chan struct{})
	entry.dirty = false
	userID := entry.userID
	html := entry.html
	done := entry.done
	s.mu.Unlock()

	err := s.repo.UpdateSummary(context.Background(), meetingID, userID, html)
	if err != nil {
		s.logger.Error().Err(err).Str("meeting_id", meetingID).Msg("summary autosave failed")
	}

	s.mu.Lock()
	entry.inFlight = false
	close(done)
	redo := entry.dirty
	if !redo && s.pending[meetingID] == entry {
		delete(s.pending, meetingID)
	}
	s.mu.Unlock()

	if redo {
		s.flush(meetingID)
	}
}

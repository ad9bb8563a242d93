package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/repositories"
)

type recordingRepo struct {
	stubMeetingRepo

	mu     sync.Mutex
	writes []string
}

func (r *recordingRepo) UpdateSummary(ctx context.Context, id, userID, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, summary)
	return r.summaryErr
}

func (r *recordingRepo) written() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.writes))
	copy(out, r.writes)
	return out
}

func waitForWrites(t *testing.T, repo *recordingRepo, count int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(repo.written()) >= count {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d writes, got %d", count, len(repo.written()))
}

func TestSummaryAutosave_FlushesAfterIdle(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewSummaryAutosaveService(repo, zerolog.Nop()).WithIdleInterval(20 * time.Millisecond)

	require.NoError(t, svc.Queue(testUser(), "m1", "<p>draft 1</p>"))

	waitForWrites(t, repo, 1)
	assert.Equal(t, []string{"<p>draft 1</p>"}, repo.written())
}

func TestSummaryAutosave_LastWriteWins(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewSummaryAutosaveService(repo, zerolog.Nop()).WithIdleInterval(30 * time.Millisecond)

	require.NoError(t, svc.Queue(testUser(), "m1", "<p>draft 1</p>"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Queue(testUser(), "m1", "<p>draft 2</p>"))

	waitForWrites(t, repo, 1)
	assert.Equal(t, []string{"<p>draft 2</p>"}, repo.written())

	// The timer was re-armed rather than fired twice.
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, repo.written(), 1)
}

func TestSummaryAutosave_ExplicitFlushWritesImmediately(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewSummaryAutosaveService(repo, zerolog.Nop()).WithIdleInterval(time.Hour)

	require.NoError(t, svc.Queue(testUser(), "m1", "<p>queued</p>"))
	require.NoError(t, svc.Flush(context.Background(), testUser(), "m1", "<p>final</p>"))

	assert.Equal(t, []string{"<p>final</p>"}, repo.written())

	// The queued edit was superseded; nothing else fires.
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, repo.written(), 1)
}

// gatedRepo blocks UpdateSummary until release closes and tracks how many
// writes overlap.
type gatedRepo struct {
	stubMeetingRepo

	mu            sync.Mutex
	writes        []string
	inFlight      int
	maxConcurrent int
	started       chan struct{}
	release       chan struct{}
}

func newGatedRepo() *gatedRepo {
	return &gatedRepo{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
}

func (r *gatedRepo) UpdateSummary(ctx context.Context, id, userID, summary string) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxConcurrent {
		r.maxConcurrent = r.inFlight
	}
	r.mu.Unlock()
	r.started <- struct{}{}

	<-r.release

	r.mu.Lock()
	r.inFlight--
	r.writes = append(r.writes, summary)
	r.mu.Unlock()
	return nil
}

func (r *gatedRepo) written() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.writes))
	copy(out, r.writes)
	return out
}

func (r *gatedRepo) overlap() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxConcurrent
}

func TestSummaryAutosave_FlushWaitsForInFlightWrite(t *testing.T) {
	repo := newGatedRepo()
	svc := NewSummaryAutosaveService(repo, zerolog.Nop()).WithIdleInterval(5 * time.Millisecond)

	require.NoError(t, svc.Queue(testUser(), "m1", "<p>draft</p>"))
	<-repo.started // timer write is in flight and blocked

	flushed := make(chan error, 1)
	go func() {
		flushed <- svc.Flush(context.Background(), testUser(), "m1", "<p>final</p>")
	}()

	// The explicit flush must wait out the blocked timer write, never
	// run beside it.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, repo.overlap())
	assert.Empty(t, repo.written())

	close(repo.release)
	require.NoError(t, <-flushed)

	assert.Equal(t, 1, repo.overlap())
	writes := repo.written()
	require.Len(t, writes, 2)
	// The explicit save commits after the older timer write, so it wins.
	assert.Equal(t, "<p>final</p>", writes[1])
}

func TestSummaryAutosave_IndependentMeetings(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewSummaryAutosaveService(repo, zerolog.Nop()).WithIdleInterval(20 * time.Millisecond)

	require.NoError(t, svc.Queue(testUser(), "m1", "<p>one</p>"))
	require.NoError(t, svc.Queue(testUser(), "m2", "<p>two</p>"))

	waitForWrites(t, repo, 2)
	assert.ElementsMatch(t, []string{"<p>one</p>", "<p>two</p>"}, repo.written())
}

func TestSummaryAutosave_ShutdownFlushesPending(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewSummaryAutosaveService(repo, zerolog.Nop()).WithIdleInterval(time.Hour)

	require.NoError(t, svc.Queue(testUser(), "m1", "<p>unsaved</p>"))
	svc.Shutdown(context.Background())

	assert.Equal(t, []string{"<p>unsaved</p>"}, repo.written())

	// Queue after shutdown is rejected.
	err := svc.Queue(testUser(), "m1", "<p>late</p>")
	require.Error(t, err)
}

func TestSummaryAutosave_Validation(t *testing.T) {
	svc := NewSummaryAutosaveService(&recordingRepo{}, zerolog.Nop())

	require.Error(t, svc.Queue(nil, "m1", "html"))
	require.Error(t, svc.Queue(&entities.User{ID: "u"}, "", "html"))
	require.Error(t, svc.Flush(context.Background(), nil, "m1", "html"))
}

var _ repositories.MeetingRepository = (*recordingRepo)(nil)

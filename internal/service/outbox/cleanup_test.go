package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/memory"
)

var _ domain.OutboxPurger = (*stubPurger)(nil)

func TestCleanupWorker_DeleteSent_Batches(t *testing.T) {
	t.Parallel()

	repo := &stubPurger{deleteResults: []int{2, 2, 1}}
	worker := NewCleanupWorker(repo, WithCleanupBatchSize(2))

	deleted, err := worker.DeleteSent(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteSent failed: %v", err)
	}
	if deleted != 5 {
		t.Fatalf("unexpected deleted total: got=%d want=5", deleted)
	}
	if calls := repo.calls(); calls != 3 {
		t.Fatalf("unexpected delete calls: got=%d want=3", calls)
	}
}

func TestCleanupWorker_DeleteSent_Error(t *testing.T) {
	t.Parallel()

	repo := &stubPurger{deleteErrors: []error{errors.New("boom")}}
	worker := NewCleanupWorker(repo, WithCleanupBatchSize(10))

	deleted, err := worker.DeleteSent(context.Background(), time.Now().UTC())
	if err == nil {
		t.Fatal("expected DeleteSent error")
	}
	if deleted != 0 {
		t.Fatalf("unexpected deleted total: got=%d want=0", deleted)
	}
}

func TestCleanupWorker_UsesRetention(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubPurger{}
	worker := NewCleanupWorker(repo, WithRetention(time.Hour))
	worker.now = func() time.Time { return now }

	worker.cleanup(context.Background())

	if got := repo.lastBefore(); !got.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected cutoff: %s", got)
	}
}

func TestCleanupWorker_PurgesPublishedMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	sent, _ := repo.Enqueue(ctx, domain.OutboxMessage{EventType: domain.EventTypeOrderCreated})
	pending, _ := repo.Enqueue(ctx, domain.OutboxMessage{EventType: domain.EventTypeOrderItemRated})
	if err := repo.MarkSent(ctx, sent.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	worker := NewCleanupWorker(repo)
	deleted, err := worker.DeleteSent(ctx, time.Now().Add(time.Second))
	if err != nil || deleted != 1 {
		t.Fatalf("expected one deleted message, got %d (%v)", deleted, err)
	}

	left, _ := repo.PullPending(ctx, 10)
	if len(left) != 1 || left[0].ID != pending.ID {
		t.Fatalf("pending message must survive cleanup: %+v", left)
	}
}

func TestCleanupWorker_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	repo := &stubPurger{}
	worker := NewCleanupWorker(repo, WithCleanupInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
	if repo.calls() == 0 {
		t.Fatal("expected cleanup to be called at least once")
	}
}

type stubPurger struct {
	mu sync.Mutex

	deleteResults []int
	deleteErrors  []error
	callCount     int
	before        time.Time
}

func (s *stubPurger) DeleteSent(_ context.Context, before time.Time, _ int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callCount++
	s.before = before

	if len(s.deleteErrors) > 0 {
		err := s.deleteErrors[0]
		s.deleteErrors = s.deleteErrors[1:]
		if err != nil {
			return 0, err
		}
	}
	if len(s.deleteResults) == 0 {
		return 0, nil
	}
	result := s.deleteResults[0]
	s.deleteResults = s.deleteResults[1:]
	return result, nil
}

func (s *stubPurger) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

func (s *stubPurger) lastBefore() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.before
}

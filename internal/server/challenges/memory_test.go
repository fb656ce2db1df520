package challenges

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/common"
	"github.com/dmitrijs2005/zkauth/internal/logging"
)

type nopLogger struct{}

func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

func testChallenge(id string, expiresAt time.Time) *Challenge {
	return &Challenge{
		ID:          id,
		Username:    "alice",
		CommitmentR: "2a",
		Scalar:      "1f",
		IssuedAt:    expiresAt.Add(-5 * time.Minute),
		ExpiresAt:   expiresAt,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	ch := testChallenge("id-1", time.Now().Add(5*time.Minute))
	if err := s.Create(ctx, ch); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Username != "alice" || got.CommitmentR != "2a" || got.Scalar != "1f" {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Get returns a copy; mutating it must not affect the stored record.
	got.Consumed = true
	again, err := s.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Consumed {
		t.Fatal("stored record was mutated through a Get result")
	}
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	ch := testChallenge("id-1", time.Now().Add(5*time.Minute))
	if err := s.Create(ctx, ch); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, ch); err == nil {
		t.Fatal("expected error on duplicate id")
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestMemoryStore_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	if err := s.Create(ctx, testChallenge("id-1", time.Now().Add(5*time.Minute))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := s.Consume(ctx, "id-1")
	if err != nil || res != ConsumeOK {
		t.Fatalf("first consume: res=%v err=%v", res, err)
	}
	res, err = s.Consume(ctx, "id-1")
	if err != nil || res != ConsumeAlready {
		t.Fatalf("second consume: res=%v err=%v", res, err)
	}
	res, err = s.Consume(ctx, "missing")
	if err != nil || res != ConsumeNotFound {
		t.Fatalf("consume of unknown id: res=%v err=%v", res, err)
	}
}

func TestMemoryStore_ConsumeRace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	if err := s.Create(ctx, testChallenge("id-1", time.Now().Add(5*time.Minute))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan ConsumeResult, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := s.Consume(ctx, "id-1")
			if err != nil {
				t.Errorf("Consume: %v", err)
				return
			}
			results <- res
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	winners := 0
	for res := range results {
		if res == ConsumeOK {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestMemoryStore_DeleteExpiredHonorsRetention(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	now := time.Now()
	// expired, but still within the retention window
	if err := s.Create(ctx, testChallenge("recent", now.Add(-30*time.Second))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// expired and past retention
	if err := s.Create(ctx, testChallenge("stale", now.Add(-2*time.Minute))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// still live
	if err := s.Create(ctx, testChallenge("live", now.Add(5*time.Minute))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := s.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}

	if _, err := s.Get(ctx, "recent"); err != nil {
		t.Fatalf("recently expired record should survive retention: %v", err)
	}
	if _, err := s.Get(ctx, "stale"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("stale record should be gone, got %v", err)
	}
	if _, err := s.Get(ctx, "live"); err != nil {
		t.Fatalf("live record should survive: %v", err)
	}
}

func TestMemoryStore_ConsumedStaysVisibleThroughRetention(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	now := time.Now()
	if err := s.Create(ctx, testChallenge("id-1", now.Add(5*time.Minute))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res, err := s.Consume(ctx, "id-1"); err != nil || res != ConsumeOK {
		t.Fatalf("first consume: res=%v err=%v", res, err)
	}

	// a sweep before expiry+retention must not remove the record
	if removed, err := s.DeleteExpired(ctx, now.Add(5*time.Minute)); err != nil || removed != 0 {
		t.Fatalf("premature sweep: removed=%d err=%v", removed, err)
	}
	if res, err := s.Consume(ctx, "id-1"); err != nil || res != ConsumeAlready {
		t.Fatalf("late duplicate within retention: res=%v err=%v", res, err)
	}

	// past expiry+retention the record is gone and reports not-found
	if removed, err := s.DeleteExpired(ctx, now.Add(7*time.Minute)); err != nil || removed != 1 {
		t.Fatalf("final sweep: removed=%d err=%v", removed, err)
	}
	if res, err := s.Consume(ctx, "id-1"); err != nil || res != ConsumeNotFound {
		t.Fatalf("consume after sweep: res=%v err=%v", res, err)
	}
}

func TestMemoryStore_RunSweeps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemoryStore(0)
	if err := s.Create(ctx, testChallenge("old", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	swept := make(chan int, 1)
	s.OnSweep(func(removed int) {
		if removed > 0 {
			select {
			case swept <- removed:
			default:
			}
		}
	})

	go s.Run(ctx, 5*time.Millisecond, nopLogger{})

	select {
	case n := <-swept:
		if n != 1 {
			t.Fatalf("expected 1 sweep removal, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never removed the expired challenge")
	}
}

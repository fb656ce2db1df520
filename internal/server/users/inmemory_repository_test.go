package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

func TestInMemory_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &User{UserName: "alice", PublicKeyY: "2a", Salt: []byte("salt")})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected assigned creation time")
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.PublicKeyY != "2a" || got.ID != created.ID {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestInMemory_Duplicate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, &User{UserName: "alice", PublicKeyY: "2a", Salt: []byte("s")}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	_, err := repo.Create(ctx, &User{UserName: "alice", PublicKeyY: "2b", Salt: []byte("s")})
	if !errors.Is(err, common.ErrDuplicateUser) {
		t.Fatalf("want common.ErrDuplicateUser, got %v", err)
	}
}

func TestInMemory_GetNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestInMemory_UpdateLastLogin(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, &User{UserName: "alice", PublicKeyY: "2a", Salt: []byte("s")}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	at := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, "alice", at); err != nil {
		t.Fatalf("UpdateLastLogin error: %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(at) {
		t.Fatalf("unexpected LastLoginAt: %v", got.LastLoginAt)
	}

	if err := repo.UpdateLastLogin(ctx, "ghost", at); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, &User{UserName: "alice", PublicKeyY: "2a", Salt: []byte("salt")}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	got.Salt[0] = 'X'
	got.PublicKeyY = "ff"

	again, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if string(again.Salt) != "salt" || again.PublicKeyY != "2a" {
		t.Fatalf("stored record was mutated through a returned copy: %+v", again)
	}
}

func TestInMemory_ConcurrentCreate_OneWinner(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, &User{UserName: "alice", PublicKeyY: "2a", Salt: []byte("s")})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrDuplicateUser):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != goroutines-1 {
		t.Fatalf("expected exactly one winner, got ok=%d dup=%d", ok, dup)
	}
}

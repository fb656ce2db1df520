package challenges

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/dmitrijs2005/zkauth/internal/common"
	"github.com/dmitrijs2005/zkauth/internal/logging"
)

const shardCount = 32

// MemoryStore keeps challenges in a fixed set of mutex-guarded shards, so
// verify attempts on unrelated challenges never contend on a single lock.
// Records stay visible for a retention window past their expiry before the
// sweeper removes them.
type MemoryStore struct {
	shards    [shardCount]*memoryShard
	retention time.Duration

	// onSweep, when set, observes the number of challenges each sweep
	// removed.
	onSweep func(removed int)

	// now is a test seam; production code leaves it at time.Now.
	now func() time.Time
}

// OnSweep registers an observer for sweep removals. Must be called before
// Run.
func (s *MemoryStore) OnSweep(fn func(removed int)) {
	s.onSweep = fn
}

type memoryShard struct {
	mu         sync.Mutex
	challenges map[string]*Challenge
}

func NewMemoryStore(retention time.Duration) *MemoryStore {
	s := &MemoryStore{retention: retention, now: time.Now}
	for i := range s.shards {
		s.shards[i] = &memoryShard{challenges: make(map[string]*Challenge)}
	}
	return s
}

func (s *MemoryStore) shard(id string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Create(ctx context.Context, ch *Challenge) error {
	sh := s.shard(ch.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.challenges[ch.ID]; ok {
		return fmt.Errorf("challenge %s already exists", ch.ID)
	}
	cp := *ch
	sh.challenges[ch.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Challenge, error) {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ch, ok := sh.challenges[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *ch
	return &cp, nil
}

func (s *MemoryStore) Consume(ctx context.Context, id string) (ConsumeResult, error) {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ch, ok := sh.challenges[id]
	if !ok {
		return ConsumeNotFound, nil
	}
	if ch.Consumed {
		return ConsumeAlready, nil
	}
	ch.Consumed = true
	return ConsumeOK, nil
}

// DeleteExpired removes challenges whose retention window has passed and
// reports how many were dropped.
func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, ch := range sh.challenges {
			if now.After(ch.ExpiresAt.Add(s.retention)) {
				delete(sh.challenges, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// Run sweeps expired challenges on the given interval until ctx is
// cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration, logger logging.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.DeleteExpired(ctx, s.now())
			if err != nil {
				logger.Error(ctx, "challenge sweep failed", "error", err)
				continue
			}
			if s.onSweep != nil {
				s.onSweep(n)
			}
			if n > 0 {
				logger.Info(ctx, "removed expired challenges", "count", n)
			}
		}
	}
}

// Package history keeps recent settlement results in memory so clients can look
// a round up after the arena moved on.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/event"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// SchemaVersion is bumped when the cached entry layout changes; entries with an
// older version are dropped on read
const SchemaVersion = "1.0"

type entry struct {
	Version  string
	Result   domain.SettlementResult
	CachedAt time.Time
}

// Store is an expiring LRU of settlement results keyed by round id
type Store struct {
	lru *expirable.LRU[uuid.UUID, *entry]
}

// New creates a store holding at most size results for ttl each
func New(size int, ttl time.Duration) *Store {
	return &Store{
		lru: expirable.NewLRU[uuid.UUID, *entry](size, nil, ttl),
	}
}

// Register subscribes the store to settlement events
func (s *Store) Register(bus event.Bus) {
	bus.Subscribe(event.RoundSettled, s.handleSettled)
}

func (s *Store) handleSettled(ctx context.Context, evt event.Event) error {
	result, err := event.DecodePayload[domain.SettlementResult](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgDecodeFailed, "type", evt.Type, "error", err)
		return nil
	}
	s.Add(result)
	return nil
}

// Add stores a result
func (s *Store) Add(result domain.SettlementResult) {
	s.lru.Add(result.RoundID, &entry{
		Version:  SchemaVersion,
		Result:   result,
		CachedAt: time.Now(),
	})
}

// Get returns the result of the given round
func (s *Store) Get(roundID uuid.UUID) (domain.SettlementResult, bool) {
	e, ok := s.lru.Get(roundID)
	if !ok {
		return domain.SettlementResult{}, false
	}
	if e.Version != SchemaVersion {
		s.lru.Remove(roundID)
		return domain.SettlementResult{}, false
	}
	return e.Result, true
}

// Recent returns up to n results, newest first. n <= 0 returns all of them.
func (s *Store) Recent(n int) []domain.SettlementResult {
	values := s.lru.Values() // oldest first
	if n <= 0 || n > len(values) {
		n = len(values)
	}

	out := make([]domain.SettlementResult, 0, n)
	for i := len(values) - 1; i >= 0 && len(out) < n; i-- {
		if values[i].Version == SchemaVersion {
			out = append(out, values[i].Result)
		}
	}
	return out
}

// Len returns the number of cached results
func (s *Store) Len() int {
	return s.lru.Len()
}

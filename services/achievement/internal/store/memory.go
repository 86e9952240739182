package store

import (
	"context"
	"sync"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

type playerRecords struct {
	order []uint32
	byID  map[uint32]domain.Record
}

// MemoryStore is the in-memory backend used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]*playerRecords
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[string]*playerRecords)}
}

// Put inserts or replaces a record verbatim, keeping its original position.
// It bypasses the Apply rules and exists for seeding fixtures.
func (s *MemoryStore) Put(playerID string, rec domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player(playerID)
	if _, ok := p.byID[rec.ID]; !ok {
		p.order = append(p.order, rec.ID)
	}
	p.byID[rec.ID] = cloneRecord(rec)
}

func (s *MemoryStore) ListAll(_ context.Context, playerID string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return []domain.Record{}, nil
	}
	out := make([]domain.Record, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, cloneRecord(p.byID[id]))
	}
	return out, nil
}

func (s *MemoryStore) Apply(_ context.Context, playerID string, u Update) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player(playerID)
	cur, exists := p.byID[u.AchievementID]
	next := apply(cur, exists, u)
	if !exists {
		p.order = append(p.order, next.ID)
	}
	p.byID[next.ID] = next
	return cloneRecord(next), nil
}

// player must be called with mu held for writing.
func (s *MemoryStore) player(playerID string) *playerRecords {
	p, ok := s.players[playerID]
	if !ok {
		p = &playerRecords{byID: make(map[uint32]domain.Record)}
		s.players[playerID] = p
	}
	return p
}

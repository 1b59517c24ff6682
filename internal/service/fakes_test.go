package service

import (
	"context"
	"sync"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// memCache is an in-memory domain.StateCache for tests.
type memCache struct {
	mu     sync.Mutex
	states map[string]domain.MarketState
	sets   int
}

func newMemCache() *memCache {
	return &memCache{states: make(map[string]domain.MarketState)}
}

func (c *memCache) Set(_ context.Context, marketID string, state domain.MarketState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[marketID] = state
	c.sets++
	return nil
}

func (c *memCache) Get(_ context.Context, marketID string) (domain.MarketState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[marketID]
	if !ok {
		return domain.MarketState{}, domain.ErrNotFound
	}
	return state, nil
}

func (c *memCache) Invalidate(_ context.Context, marketID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, marketID)
	return nil
}

// memBus is an in-memory domain.SignalBus recording published payloads.
type memBus struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newMemBus() *memBus {
	return &memBus{published: make(map[string][][]byte)}
}

func (b *memBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], payload)
	return nil
}

func (b *memBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *memBus) count(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[channel])
}

// memSettlementStore mimics the postgres store's unique constraints.
type memSettlementStore struct {
	mu          sync.Mutex
	resolutions map[string]domain.Resolution
	settlements map[string]domain.Settlement // key market_id/user_id
}

func newMemSettlementStore() *memSettlementStore {
	return &memSettlementStore{
		resolutions: make(map[string]domain.Resolution),
		settlements: make(map[string]domain.Settlement),
	}
}

func (s *memSettlementStore) RecordResolution(_ context.Context, res domain.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.resolutions[res.MarketID]
	if !ok {
		s.resolutions[res.MarketID] = res
		return nil
	}
	if existing.WinnerIndex != res.WinnerIndex {
		return domain.ErrWinnerMismatch
	}
	return nil
}

func (s *memSettlementStore) GetResolution(_ context.Context, marketID string) (domain.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resolutions[marketID]
	if !ok {
		return domain.Resolution{}, domain.ErrNotFound
	}
	return res, nil
}

func (s *memSettlementStore) Insert(_ context.Context, st domain.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := st.MarketID + "/" + st.UserID
	if _, ok := s.settlements[key]; ok {
		return domain.ErrAlreadyExists
	}
	s.settlements[key] = st
	return nil
}

func (s *memSettlementStore) GetByMarketAndUser(_ context.Context, marketID, userID string) (domain.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settlements[marketID+"/"+userID]
	if !ok {
		return domain.Settlement{}, domain.ErrNotFound
	}
	return st, nil
}

func (s *memSettlementStore) ListByMarket(_ context.Context, marketID string, limit int) ([]domain.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Settlement
	for _, st := range s.settlements {
		if st.MarketID == marketID {
			out = append(out, st)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// memArchiver records archived settlements and can be told to fail.
type memArchiver struct {
	mu       sync.Mutex
	archived []domain.Settlement
	err      error
}

func (a *memArchiver) ArchiveSettlement(_ context.Context, st domain.Settlement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.archived = append(a.archived, st)
	return nil
}

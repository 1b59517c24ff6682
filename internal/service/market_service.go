// Package service composes the pricing engine with caches, stores, and the
// signal bus. The engine itself is pure; everything stateful or effectful
// lives here.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/futarchyhq/futarchyd/internal/domain"
	"github.com/futarchyhq/futarchyd/internal/engine"
)

// StateChannel is the signal bus channel carrying market-state events.
const StateChannel = "market_states"

// MarketService owns the live market registry. It derives a fresh
// MarketState through the engine on every weight update, mirrors the
// snapshot into the state cache, and publishes a state event on the bus.
// The registry is the authoritative copy; the cache is a read-side
// accelerator for other processes.
type MarketService struct {
	spread float64
	cache  domain.StateCache
	bus    domain.SignalBus
	logger *slog.Logger

	mu      sync.RWMutex
	markets map[string]*marketEntry
}

// marketEntry pairs a market with the raw weights its state was derived
// from.
type marketEntry struct {
	market domain.Market
	inputs []domain.OutcomeInput
}

// NewMarketService creates a MarketService. spread is the NO-side spread
// applied to every normalization.
func NewMarketService(spread float64, cache domain.StateCache, bus domain.SignalBus, logger *slog.Logger) *MarketService {
	return &MarketService{
		spread:  spread,
		cache:   cache,
		bus:     bus,
		logger:  logger.With(slog.String("component", "market_service")),
		markets: make(map[string]*marketEntry),
	}
}

// stateEvent is the JSON shape published to StateChannel.
type stateEvent struct {
	Event    string             `json:"event"`
	MarketID string             `json:"market_id"`
	State    domain.MarketState `json:"state"`
}

// CreateMarket registers a new market from its initial outcome weights and
// returns it with a freshly derived state. An empty id is replaced with a
// generated UUID. A duplicate id fails with domain.ErrAlreadyExists; fewer
// than two outcomes fails with domain.ErrInvalidMarket.
func (s *MarketService) CreateMarket(ctx context.Context, id, question string, outcomes []domain.OutcomeInput) (domain.Market, error) {
	if len(outcomes) < 2 {
		return domain.Market{}, fmt.Errorf("market_service: create: market needs >= 2 outcomes, got %d: %w",
			len(outcomes), domain.ErrInvalidMarket)
	}
	if id == "" {
		id = uuid.New().String()
	}

	state, err := engine.UpdateMarketState(outcomes, s.spread)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market_service: create %q: %w", id, err)
	}
	now := time.Now().UTC()
	state.UpdatedAt = now

	market := domain.Market{
		ID:        id,
		Question:  question,
		Status:    domain.MarketStatusActive,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	if _, exists := s.markets[id]; exists {
		s.mu.Unlock()
		return domain.Market{}, fmt.Errorf("market_service: create %q: %w", id, domain.ErrAlreadyExists)
	}
	s.markets[id] = &marketEntry{market: market, inputs: append([]domain.OutcomeInput(nil), outcomes...)}
	s.mu.Unlock()

	s.propagate(ctx, id, state)
	s.logger.InfoContext(ctx, "market created",
		slog.String("market_id", id),
		slog.Int("outcomes", len(outcomes)),
	)
	return market, nil
}

// ApplyWeights replaces a market's raw weights and rederives its state.
// The state is never patched in place; every update recomputes the full
// snapshot from the new weight list. Updates against resolved markets fail
// with domain.ErrInvalidMarket.
func (s *MarketService) ApplyWeights(ctx context.Context, marketID string, outcomes []domain.OutcomeInput) (domain.MarketState, error) {
	state, err := engine.UpdateMarketState(outcomes, s.spread)
	if err != nil {
		return domain.MarketState{}, fmt.Errorf("market_service: apply weights %q: %w", marketID, err)
	}
	now := time.Now().UTC()
	state.UpdatedAt = now

	s.mu.Lock()
	entry, ok := s.markets[marketID]
	if !ok {
		s.mu.Unlock()
		return domain.MarketState{}, fmt.Errorf("market_service: apply weights %q: %w", marketID, domain.ErrNotFound)
	}
	if entry.market.Status != domain.MarketStatusActive {
		s.mu.Unlock()
		return domain.MarketState{}, fmt.Errorf("market_service: apply weights %q: market is %s: %w",
			marketID, entry.market.Status, domain.ErrInvalidMarket)
	}
	if len(outcomes) != len(entry.inputs) {
		s.mu.Unlock()
		return domain.MarketState{}, fmt.Errorf("market_service: apply weights %q: outcome count changed from %d to %d: %w",
			marketID, len(entry.inputs), len(outcomes), domain.ErrInvalidInput)
	}
	entry.inputs = append([]domain.OutcomeInput(nil), outcomes...)
	entry.market.State = state
	entry.market.UpdatedAt = now
	s.mu.Unlock()

	s.propagate(ctx, marketID, state)
	return state, nil
}

// GetMarket returns a market by ID, or domain.ErrNotFound.
func (s *MarketService) GetMarket(ctx context.Context, marketID string) (domain.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.markets[marketID]
	if !ok {
		return domain.Market{}, fmt.Errorf("market_service: get %q: %w", marketID, domain.ErrNotFound)
	}
	return entry.market, nil
}

// GetState returns a market's latest state, falling back to the shared
// cache for markets owned by another instance.
func (s *MarketService) GetState(ctx context.Context, marketID string) (domain.MarketState, error) {
	s.mu.RLock()
	entry, ok := s.markets[marketID]
	s.mu.RUnlock()
	if ok {
		return entry.market.State, nil
	}

	state, err := s.cache.Get(ctx, marketID)
	if err != nil {
		return domain.MarketState{}, fmt.Errorf("market_service: get state %q: %w", marketID, err)
	}
	return state, nil
}

// ListMarkets returns every registered market.
func (s *MarketService) ListMarkets(ctx context.Context) []domain.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	markets := make([]domain.Market, 0, len(s.markets))
	for _, entry := range s.markets {
		markets = append(markets, entry.market)
	}
	return markets
}

// Quote prices a prospective YES/NO purchase against the market's current
// state. An outcome index outside the market fails with
// domain.ErrInvalidInput.
func (s *MarketService) Quote(ctx context.Context, marketID string, outcomeIndex int, side domain.TokenSide, amount float64) (domain.TradeQuote, error) {
	state, err := s.GetState(ctx, marketID)
	if err != nil {
		return domain.TradeQuote{}, err
	}
	if outcomeIndex < 0 || outcomeIndex >= len(state.Outcomes) {
		return domain.TradeQuote{}, fmt.Errorf("market_service: quote %q: outcome index %d outside [0,%d): %w",
			marketID, outcomeIndex, len(state.Outcomes), domain.ErrInvalidInput)
	}
	return engine.Quote(amount, side, state.Outcomes[outcomeIndex])
}

// MintQuote prices minting one full set for the market.
func (s *MarketService) MintQuote(ctx context.Context, marketID string) (domain.MintResult, error) {
	state, err := s.GetState(ctx, marketID)
	if err != nil {
		return domain.MintResult{}, err
	}
	return engine.MintFullSet(len(state.Outcomes))
}

// CheckRedeem checks a full-set redemption against the market's outcome
// count. A holdings vector of the wrong length fails with
// domain.ErrInvalidHoldings.
func (s *MarketService) CheckRedeem(ctx context.Context, marketID string, yesTokenHoldings []float64) (domain.RedeemResult, error) {
	state, err := s.GetState(ctx, marketID)
	if err != nil {
		return domain.RedeemResult{}, err
	}
	if len(yesTokenHoldings) != len(state.Outcomes) {
		return domain.RedeemResult{}, fmt.Errorf("market_service: redeem %q: holdings length %d != outcome count %d: %w",
			marketID, len(yesTokenHoldings), len(state.Outcomes), domain.ErrInvalidHoldings)
	}
	return engine.RedeemFullSet(yesTokenHoldings), nil
}

// OutcomeCount returns the number of outcomes in a market.
func (s *MarketService) OutcomeCount(ctx context.Context, marketID string) (int, error) {
	state, err := s.GetState(ctx, marketID)
	if err != nil {
		return 0, err
	}
	return len(state.Outcomes), nil
}

// MarkResolved flips a market to resolved status. Weight updates are
// rejected afterwards; reads keep serving the final state.
func (s *MarketService) MarkResolved(ctx context.Context, marketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.markets[marketID]
	if !ok {
		return fmt.Errorf("market_service: mark resolved %q: %w", marketID, domain.ErrNotFound)
	}
	entry.market.Status = domain.MarketStatusResolved
	entry.market.UpdatedAt = time.Now().UTC()
	return nil
}

// propagate mirrors a fresh state into the cache and publishes it on the
// bus. Both are best-effort: the in-memory registry already holds the
// authoritative copy.
func (s *MarketService) propagate(ctx context.Context, marketID string, state domain.MarketState) {
	if err := s.cache.Set(ctx, marketID, state); err != nil {
		s.logger.WarnContext(ctx, "market_service: cache set failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}

	payload, err := json.Marshal(stateEvent{
		Event:    "market_state",
		MarketID: marketID,
		State:    state,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "market_service: marshal state event failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.bus.Publish(ctx, StateChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "market_service: publish state event failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/futarchyhq/futarchyd/internal/domain"
	"github.com/futarchyhq/futarchyd/internal/engine"
)

// SettlementChannel is the signal bus channel carrying settlement events.
const SettlementChannel = "settlements"

// SettlementService is the effectful settlement collaborator around the
// pure resolver. The engine decides amounts; this service records the
// terminal winner exactly once, persists at most one settlement per
// (market, user), archives the report, and publishes the event. All dedup
// lives in the store's unique constraints, so concurrent settlement
// attempts are safe.
type SettlementService struct {
	store    domain.SettlementStore
	archiver domain.SettlementArchiver // nil disables archiving
	bus      domain.SignalBus
	markets  *MarketService
	logger   *slog.Logger
}

// NewSettlementService creates a SettlementService. archiver may be nil.
func NewSettlementService(
	store domain.SettlementStore,
	archiver domain.SettlementArchiver,
	bus domain.SignalBus,
	markets *MarketService,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		store:    store,
		archiver: archiver,
		bus:      bus,
		markets:  markets,
		logger:   logger.With(slog.String("component", "settlement_service")),
	}
}

// settlementEvent is the JSON shape published to SettlementChannel.
type settlementEvent struct {
	Event      string            `json:"event"`
	MarketID   string            `json:"market_id"`
	Settlement domain.Settlement `json:"settlement"`
}

// Preview computes the payout for a winner and holdings without any side
// effects. Useful for showing a user what settlement would pay before the
// market actually resolves.
func (s *SettlementService) Preview(ctx context.Context, marketID string, winnerIndex int, holdings domain.Holdings) (domain.Payout, error) {
	if err := s.checkHoldings(ctx, marketID, holdings); err != nil {
		return domain.Payout{}, err
	}
	return engine.Resolve(winnerIndex, holdings)
}

// Settle performs the one effectful settlement for a (market, user) pair:
// records the market's terminal winner (first caller wins; a later call
// with a different winner fails with domain.ErrWinnerMismatch), computes
// the payout, and persists the settlement. A redundant attempt returns the
// previously stored settlement together with domain.ErrAlreadyExists so the
// caller knows not to transfer funds again.
func (s *SettlementService) Settle(ctx context.Context, marketID, userID string, winnerIndex int, holdings domain.Holdings) (domain.Settlement, error) {
	if err := s.checkHoldings(ctx, marketID, holdings); err != nil {
		return domain.Settlement{}, err
	}

	payout, err := engine.Resolve(winnerIndex, holdings)
	if err != nil {
		return domain.Settlement{}, err
	}

	now := time.Now().UTC()
	if err := s.store.RecordResolution(ctx, domain.Resolution{
		MarketID:    marketID,
		WinnerIndex: winnerIndex,
		ResolvedAt:  now,
	}); err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement_service: settle %s: %w", marketID, err)
	}

	settlement := domain.Settlement{
		ID:          uuid.New().String(),
		MarketID:    marketID,
		UserID:      userID,
		WinnerIndex: winnerIndex,
		Payout:      payout,
		SettledAt:   now,
	}

	if err := s.store.Insert(ctx, settlement); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, getErr := s.store.GetByMarketAndUser(ctx, marketID, userID)
			if getErr != nil {
				return domain.Settlement{}, fmt.Errorf("settlement_service: fetch existing settlement %s/%s: %w",
					marketID, userID, getErr)
			}
			return existing, domain.ErrAlreadyExists
		}
		return domain.Settlement{}, fmt.Errorf("settlement_service: insert settlement %s/%s: %w", marketID, userID, err)
	}

	if err := s.markets.MarkResolved(ctx, marketID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "settlement_service: mark resolved failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveSettlement(ctx, settlement); err != nil {
			// The database row is authoritative; archive failures never
			// unwind a settlement.
			s.logger.WarnContext(ctx, "settlement_service: archive failed",
				slog.String("settlement_id", settlement.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.publish(ctx, settlement)
	s.logger.InfoContext(ctx, "settlement recorded",
		slog.String("market_id", marketID),
		slog.String("user_id", userID),
		slog.Int("winner_index", winnerIndex),
		slog.Float64("total_payout", payout.TotalPayout),
	)
	return settlement, nil
}

// GetResolution returns the recorded terminal winner for a market.
func (s *SettlementService) GetResolution(ctx context.Context, marketID string) (domain.Resolution, error) {
	return s.store.GetResolution(ctx, marketID)
}

// ListSettlements returns the most recent settlements for a market.
func (s *SettlementService) ListSettlements(ctx context.Context, marketID string, limit int) ([]domain.Settlement, error) {
	return s.store.ListByMarket(ctx, marketID, limit)
}

// checkHoldings verifies the holdings arrays match the market's outcome
// count before handing them to the resolver.
func (s *SettlementService) checkHoldings(ctx context.Context, marketID string, holdings domain.Holdings) error {
	n, err := s.markets.OutcomeCount(ctx, marketID)
	if err != nil {
		return fmt.Errorf("settlement_service: market %s: %w", marketID, err)
	}
	if len(holdings.YesTokens) != n || len(holdings.NoTokens) != n {
		return fmt.Errorf("settlement_service: market %s has %d outcomes, holdings yes=%d no=%d: %w",
			marketID, n, len(holdings.YesTokens), len(holdings.NoTokens), domain.ErrInvalidHoldings)
	}
	return nil
}

func (s *SettlementService) publish(ctx context.Context, settlement domain.Settlement) {
	payload, err := json.Marshal(settlementEvent{
		Event:      "settlement",
		MarketID:   settlement.MarketID,
		Settlement: settlement,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "settlement_service: marshal event failed",
			slog.String("settlement_id", settlement.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.bus.Publish(ctx, SettlementChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "settlement_service: publish event failed",
			slog.String("settlement_id", settlement.ID),
			slog.String("error", err.Error()),
		)
	}
}

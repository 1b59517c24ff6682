package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint
// violations.
const uniqueViolation = "23505"

// SettlementStore implements domain.SettlementStore using PostgreSQL. The
// resolutions primary key and the (market_id, user_id) unique constraint are
// the dedup mechanism for concurrent settlement attempts: the pricing core
// stays pure, the database decides which attempt takes effect.
type SettlementStore struct {
	pool *pgxpool.Pool
}

// NewSettlementStore creates a new SettlementStore backed by the given
// connection pool.
func NewSettlementStore(pool *pgxpool.Pool) *SettlementStore {
	return &SettlementStore{pool: pool}
}

// RecordResolution stores the terminal winner for a market, exactly once.
// Recording the same winner again is a no-op; a different winner returns
// domain.ErrWinnerMismatch.
func (s *SettlementStore) RecordResolution(ctx context.Context, res domain.Resolution) error {
	const query = `
		INSERT INTO resolutions (market_id, winner_index, resolved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (market_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, res.MarketID, res.WinnerIndex, res.ResolvedAt)
	if err != nil {
		return fmt.Errorf("postgres: record resolution %s: %w", res.MarketID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Lost the race or re-recorded: verify the stored winner matches.
	existing, err := s.GetResolution(ctx, res.MarketID)
	if err != nil {
		return fmt.Errorf("postgres: verify resolution %s: %w", res.MarketID, err)
	}
	if existing.WinnerIndex != res.WinnerIndex {
		return fmt.Errorf("postgres: market %s already resolved to outcome %d: %w",
			res.MarketID, existing.WinnerIndex, domain.ErrWinnerMismatch)
	}
	return nil
}

// GetResolution returns the recorded resolution for a market, or
// domain.ErrNotFound if the market has not been resolved.
func (s *SettlementStore) GetResolution(ctx context.Context, marketID string) (domain.Resolution, error) {
	const query = `
		SELECT market_id, winner_index, resolved_at
		FROM resolutions WHERE market_id = $1`

	var res domain.Resolution
	err := s.pool.QueryRow(ctx, query, marketID).Scan(&res.MarketID, &res.WinnerIndex, &res.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Resolution{}, domain.ErrNotFound
		}
		return domain.Resolution{}, fmt.Errorf("postgres: get resolution %s: %w", marketID, err)
	}
	return res, nil
}

const settlementSelectCols = `id, market_id, user_id, winner_index,
	yes_token_payouts, no_token_payouts, total_payout, settled_at`

// Insert stores a settlement. A second settlement for the same
// (market, user) pair returns domain.ErrAlreadyExists.
func (s *SettlementStore) Insert(ctx context.Context, st domain.Settlement) error {
	const query = `
		INSERT INTO settlements (
			id, market_id, user_id, winner_index,
			yes_token_payouts, no_token_payouts, total_payout, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		st.ID, st.MarketID, st.UserID, st.WinnerIndex,
		st.Payout.YesTokenPayouts, st.Payout.NoTokenPayouts, st.Payout.TotalPayout, st.SettledAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("postgres: insert settlement %s: %w", st.ID, err)
	}
	return nil
}

// GetByMarketAndUser returns the settlement for one user in one market, or
// domain.ErrNotFound if that pair has not been settled.
func (s *SettlementStore) GetByMarketAndUser(ctx context.Context, marketID, userID string) (domain.Settlement, error) {
	query := `SELECT ` + settlementSelectCols + ` FROM settlements WHERE market_id = $1 AND user_id = $2`

	st, err := scanSettlement(s.pool.QueryRow(ctx, query, marketID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Settlement{}, domain.ErrNotFound
		}
		return domain.Settlement{}, fmt.Errorf("postgres: get settlement %s/%s: %w", marketID, userID, err)
	}
	return st, nil
}

// ListByMarket returns the most recent settlements for a market.
func (s *SettlementStore) ListByMarket(ctx context.Context, marketID string, limit int) ([]domain.Settlement, error) {
	query := `SELECT ` + settlementSelectCols + ` FROM settlements WHERE market_id = $1 ORDER BY settled_at DESC`
	args := []any{marketID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list settlements %s: %w", marketID, err)
	}
	defer rows.Close()

	var settlements []domain.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan settlement: %w", err)
		}
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list settlements %s: %w", marketID, err)
	}
	return settlements, nil
}

// scanSettlement reads one settlement row from a pgx row scanner.
func scanSettlement(row pgx.Row) (domain.Settlement, error) {
	var st domain.Settlement
	err := row.Scan(
		&st.ID, &st.MarketID, &st.UserID, &st.WinnerIndex,
		&st.Payout.YesTokenPayouts, &st.Payout.NoTokenPayouts, &st.Payout.TotalPayout, &st.SettledAt,
	)
	return st, err
}

// Compile-time interface check.
var _ domain.SettlementStore = (*SettlementStore)(nil)

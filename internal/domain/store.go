package domain

import (
	"context"
	"io"
)

// SettlementStore persists resolutions and settlements. It is the effectful
// settlement collaborator's dedup layer: RecordResolution is insert-once per
// market and Insert is insert-once per (market, user).
type SettlementStore interface {
	// RecordResolution stores the terminal winner for a market. It returns
	// ErrWinnerMismatch when a different winner was already recorded and nil
	// when the same winner was recorded before (idempotent).
	RecordResolution(ctx context.Context, res Resolution) error
	GetResolution(ctx context.Context, marketID string) (Resolution, error)

	// Insert stores a settlement. It returns ErrAlreadyExists when the
	// (market, user) pair has already been settled.
	Insert(ctx context.Context, st Settlement) error
	GetByMarketAndUser(ctx context.Context, marketID, userID string) (Settlement, error)
	ListByMarket(ctx context.Context, marketID string, limit int) ([]Settlement, error)
}

// StateCache provides fast access to the latest MarketState per market.
type StateCache interface {
	Set(ctx context.Context, marketID string, state MarketState) error
	Get(ctx context.Context, marketID string) (MarketState, error)
	Invalidate(ctx context.Context, marketID string) error
}

// SignalBus provides pub/sub distribution of market-state and settlement
// events to downstream consumers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// SettlementArchiver writes settlement reports to cold storage.
type SettlementArchiver interface {
	ArchiveSettlement(ctx context.Context, st Settlement) error
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

const stateTTL = 5 * time.Minute

// StateCache implements domain.StateCache using JSON-serialized MarketState
// values keyed per market.
//
// Key schema:
//
//	market_state:{marketID} - string value containing JSON
type StateCache struct {
	rdb *redis.Client
}

// NewStateCache creates a StateCache backed by the given Client.
func NewStateCache(c *Client) *StateCache {
	return &StateCache{rdb: c.Underlying()}
}

func stateKey(marketID string) string { return "market_state:" + marketID }

// Set stores a MarketState snapshot with a 5-minute TTL. The TTL keeps stale
// snapshots from outliving a dead feed; the market service rewrites the key
// on every oracle tick.
func (sc *StateCache) Set(ctx context.Context, marketID string, state domain.MarketState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis: marshal state %s: %w", marketID, err)
	}
	if err := sc.rdb.Set(ctx, stateKey(marketID), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("redis: set state %s: %w", marketID, err)
	}
	return nil
}

// Get retrieves the latest MarketState for a market. It returns
// domain.ErrNotFound when no snapshot is cached.
func (sc *StateCache) Get(ctx context.Context, marketID string) (domain.MarketState, error) {
	data, err := sc.rdb.Get(ctx, stateKey(marketID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.MarketState{}, domain.ErrNotFound
		}
		return domain.MarketState{}, fmt.Errorf("redis: get state %s: %w", marketID, err)
	}

	var state domain.MarketState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.MarketState{}, fmt.Errorf("redis: unmarshal state %s: %w", marketID, err)
	}
	return state, nil
}

// Invalidate removes a cached MarketState.
func (sc *StateCache) Invalidate(ctx context.Context, marketID string) error {
	if err := sc.rdb.Del(ctx, stateKey(marketID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate state %s: %w", marketID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.StateCache = (*StateCache)(nil)

// Package feed connects to the price/volume oracle and streams raw outcome
// weights into the market service.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second
)

// WeightUpdate is the JSON shape published by the oracle for one market: the
// full raw weight list, from which the market service derives a fresh state.
type WeightUpdate struct {
	Type     string                `json:"type"`
	MarketID string                `json:"market_id"`
	Question string                `json:"question,omitempty"`
	Outcomes []domain.OutcomeInput `json:"outcomes"`
}

// UpdateHandler is called for each weight update that passes the market
// filter.
type UpdateHandler func(ctx context.Context, update WeightUpdate)

// OracleFeed connects to the oracle WebSocket, reads weight updates, and
// invokes the handler on each. It reconnects on disconnect.
type OracleFeed struct {
	wsURL     string
	markets   map[string]bool // optional filter; empty means all markets
	onUpdate  UpdateHandler
	logger    *slog.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// NewOracleFeed creates a feed for the given oracle endpoint. marketIDs
// restricts delivery to those markets; pass nil to receive everything.
func NewOracleFeed(wsURL string, marketIDs []string, onUpdate UpdateHandler, logger *slog.Logger) *OracleFeed {
	filter := make(map[string]bool, len(marketIDs))
	for _, id := range marketIDs {
		filter[id] = true
	}
	return &OracleFeed{
		wsURL:    wsURL,
		markets:  filter,
		onUpdate: onUpdate,
		logger:   logger.With(slog.String("component", "oracle_feed")),
		done:     make(chan struct{}),
	}
}

// Run connects and reads weight updates until ctx is cancelled, reconnecting
// with a delay on disconnect.
func (f *OracleFeed) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("oracle ws disconnected, reconnecting", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *OracleFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("feed: connect %s: %w", f.wsURL, err)
	}
	defer conn.Close()

	f.logger.Info("oracle ws connected", slog.String("url", f.wsURL))

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Keepalive pings until the connection drops or ctx ends.
	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				_ = conn.Close()
				return
			case <-pingDone:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("feed: read: %w (%v)", domain.ErrWSDisconnect, err)
		}
		f.handleMessage(ctx, data)
	}
}

func (f *OracleFeed) handleMessage(ctx context.Context, data []byte) {
	var update WeightUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		f.logger.Warn("oracle ws: bad payload",
			slog.String("error", err.Error()),
			slog.String("payload", string(data)),
		)
		return
	}
	if update.Type != "weights" || update.MarketID == "" {
		return
	}
	if len(f.markets) > 0 && !f.markets[update.MarketID] {
		return
	}
	if f.onUpdate != nil {
		f.onUpdate(ctx, update)
	}
}

// Close stops the feed.
func (f *OracleFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/futarchyhq/futarchyd/internal/domain"
	"github.com/futarchyhq/futarchyd/internal/feed"
	"github.com/futarchyhq/futarchyd/internal/server"
	"github.com/futarchyhq/futarchyd/internal/server/handler"
	"github.com/futarchyhq/futarchyd/internal/service"
)

// services bundles the domain services shared by every mode.
type services struct {
	markets     *service.MarketService
	settlements *service.SettlementService
}

func (a *App) buildServices(deps *Dependencies) *services {
	markets := service.NewMarketService(a.cfg.Engine.Spread, deps.StateCache, deps.SignalBus, a.logger)
	settlements := service.NewSettlementService(deps.SettlementStore, deps.Archiver, deps.SignalBus, markets, a.logger)
	return &services{
		markets:     markets,
		settlements: settlements,
	}
}

// ServerMode runs the HTTP API only. Weight updates arrive through
// PUT /api/markets/{id}/weights instead of the oracle feed.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startHTTPServer(ctx, g, svcs)

	return g.Wait()
}

// FeedMode runs the oracle feed only: weight updates stream in over the
// WebSocket, states are recomputed, and snapshots are pushed to the cache and
// bus for other instances to serve.
func (a *App) FeedMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting feed mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startOracleFeed(ctx, g, svcs)

	return g.Wait()
}

// FullMode runs the oracle feed and the HTTP API in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)

	a.startOracleFeed(ctx, g, svcs)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, svcs)
	}

	return g.Wait()
}

// startOracleFeed adds the oracle WebSocket consumer to the errgroup. Each
// weight update either reprices a known market or registers a new one.
func (a *App) startOracleFeed(ctx context.Context, g *errgroup.Group, svcs *services) {
	onUpdate := func(ctx context.Context, update feed.WeightUpdate) {
		_, err := svcs.markets.ApplyWeights(ctx, update.MarketID, update.Outcomes)
		if errors.Is(err, domain.ErrNotFound) {
			_, err = svcs.markets.CreateMarket(ctx, update.MarketID, update.Question, update.Outcomes)
		}
		if err != nil {
			a.logger.WarnContext(ctx, "oracle update rejected",
				slog.String("market_id", update.MarketID),
				slog.String("error", err.Error()),
			)
		}
	}

	oracleFeed := feed.NewOracleFeed(a.cfg.Oracle.WsURL, a.cfg.Oracle.Markets, onUpdate, a.logger)
	g.Go(func() error {
		defer oracleFeed.Close()
		return oracleFeed.Run(ctx)
	})
}

// startHTTPServer adds the HTTP server and its graceful shutdown watcher to
// the errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, svcs *services) {
	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health:      handler.NewHealthHandler(a.logger),
			Markets:     handler.NewMarketHandler(svcs.markets, a.logger),
			Quotes:      handler.NewQuoteHandler(svcs.markets, a.logger),
			Settlements: handler.NewSettlementHandler(svcs.settlements, a.logger),
		},
		a.logger,
	)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

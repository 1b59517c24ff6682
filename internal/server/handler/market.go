package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// MarketService defines the methods that the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type MarketService interface {
	CreateMarket(ctx context.Context, id, question string, outcomes []domain.OutcomeInput) (domain.Market, error)
	ApplyWeights(ctx context.Context, marketID string, outcomes []domain.OutcomeInput) (domain.MarketState, error)
	GetMarket(ctx context.Context, marketID string) (domain.Market, error)
	GetState(ctx context.Context, marketID string) (domain.MarketState, error)
	ListMarkets(ctx context.Context) []domain.Market
}

// MarketHandler serves market registry and state endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// createMarketRequest is the body for market creation.
type createMarketRequest struct {
	ID       string                `json:"id"`
	Question string                `json:"question"`
	Outcomes []domain.OutcomeInput `json:"outcomes"`
}

// CreateMarket registers a new market from its initial outcome weights.
// POST /api/markets
func (h *MarketHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	market, err := h.markets.CreateMarket(r.Context(), req.ID, req.Question, req.Outcomes)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create market failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create market")
		return
	}

	writeJSON(w, http.StatusCreated, market)
}

// listMarketsResponse wraps the list endpoint output.
type listMarketsResponse struct {
	Markets []domain.Market `json:"markets"`
	Total   int             `json:"total"`
}

// ListMarkets returns every registered market.
// GET /api/markets
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	markets := h.markets.ListMarkets(r.Context())
	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: markets,
		Total:   len(markets),
	})
}

// GetMarket returns a single market by its ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	market, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get market")
		return
	}

	writeJSON(w, http.StatusOK, market)
}

// GetState returns the latest derived state for a market.
// GET /api/markets/{id}/state
func (h *MarketHandler) GetState(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	state, err := h.markets.GetState(r.Context(), id)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get state failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get market state")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// applyWeightsRequest is the body for a manual weight update.
type applyWeightsRequest struct {
	Outcomes []domain.OutcomeInput `json:"outcomes"`
}

// ApplyWeights recomputes a market's state from new outcome weights.
// PUT /api/markets/{id}/weights
func (h *MarketHandler) ApplyWeights(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req applyWeightsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	state, err := h.markets.ApplyWeights(r.Context(), id, req.Outcomes)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: apply weights failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to apply weights")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

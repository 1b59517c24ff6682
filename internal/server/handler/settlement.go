package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// SettlementService defines the settlement methods the handler needs.
type SettlementService interface {
	Preview(ctx context.Context, marketID string, winnerIndex int, holdings domain.Holdings) (domain.Payout, error)
	Settle(ctx context.Context, marketID, userID string, winnerIndex int, holdings domain.Holdings) (domain.Settlement, error)
	GetResolution(ctx context.Context, marketID string) (domain.Resolution, error)
	ListSettlements(ctx context.Context, marketID string, limit int) ([]domain.Settlement, error)
}

// SettlementHandler serves market resolution and settlement endpoints.
type SettlementHandler struct {
	settlements SettlementService
	logger      *slog.Logger
}

// NewSettlementHandler creates a SettlementHandler with the given service and
// logger.
func NewSettlementHandler(settlements SettlementService, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{
		settlements: settlements,
		logger:      logger,
	}
}

// settleRequest is the body for settlement and settlement preview.
type settleRequest struct {
	UserID      string          `json:"user_id"`
	WinnerIndex int             `json:"winner_index"`
	Holdings    domain.Holdings `json:"holdings"`
}

// Preview computes a settlement payout without recording anything.
// POST /api/markets/{id}/settle/preview
func (h *SettlementHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req settleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	payout, err := h.settlements.Preview(r.Context(), id, req.WinnerIndex, req.Holdings)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: settle preview failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to preview settlement")
		return
	}

	writeJSON(w, http.StatusOK, payout)
}

// Settle records the market winner and settles the user's holdings. A repeat
// settlement for the same (market, user) returns the stored settlement with a
// 409 so callers can detect double submission.
// POST /api/markets/{id}/settle
func (h *SettlementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req settleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id")
		return
	}

	settlement, err := h.settlements.Settle(r.Context(), id, req.UserID, req.WinnerIndex, req.Holdings)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, settlement)
			return
		}
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: settle failed",
			slog.String("market_id", id),
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to settle")
		return
	}

	writeJSON(w, http.StatusCreated, settlement)
}

// GetResolution returns the recorded terminal winner for a market.
// GET /api/markets/{id}/resolution
func (h *SettlementHandler) GetResolution(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	res, err := h.settlements.GetResolution(r.Context(), id)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get resolution failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get resolution")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ListSettlements returns recent settlements for a market.
// GET /api/markets/{id}/settlements?limit=50
func (h *SettlementHandler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	settlements, err := h.settlements.ListSettlements(r.Context(), id, limit)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: list settlements failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list settlements")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"settlements": settlements,
		"total":       len(settlements),
	})
}

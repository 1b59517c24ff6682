package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// QuoteService defines the pricing methods the quote handler needs.
type QuoteService interface {
	Quote(ctx context.Context, marketID string, outcomeIndex int, side domain.TokenSide, amount float64) (domain.TradeQuote, error)
	MintQuote(ctx context.Context, marketID string) (domain.MintResult, error)
	CheckRedeem(ctx context.Context, marketID string, yesTokenHoldings []float64) (domain.RedeemResult, error)
}

// QuoteHandler serves trade quoting and full-set endpoints.
type QuoteHandler struct {
	quotes QuoteService
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler with the given service and logger.
func NewQuoteHandler(quotes QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		logger: logger,
	}
}

// quoteRequest is the body for a trade quote.
type quoteRequest struct {
	OutcomeIndex int              `json:"outcome_index"`
	Side         domain.TokenSide `json:"side"`
	Amount       float64          `json:"amount"`
}

// Quote prices a prospective YES/NO purchase.
// POST /api/markets/{id}/quote
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	quote, err := h.quotes.Quote(r.Context(), id, req.OutcomeIndex, req.Side, req.Amount)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: quote failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute quote")
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// MintFullSet prices minting one complete set of outcome tokens.
// POST /api/markets/{id}/fullset/mint
func (h *QuoteHandler) MintFullSet(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	mint, err := h.quotes.MintQuote(r.Context(), id)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: mint quote failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute mint")
		return
	}

	writeJSON(w, http.StatusOK, mint)
}

// redeemRequest is the body for a full-set redemption check.
type redeemRequest struct {
	YesTokens []float64 `json:"yes_tokens"`
}

// RedeemFullSet checks whether the holdings redeem for one full set.
// POST /api/markets/{id}/fullset/redeem
func (h *QuoteHandler) RedeemFullSet(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	redeem, err := h.quotes.CheckRedeem(r.Context(), id, req.YesTokens)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: redeem check failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to check redemption")
		return
	}

	writeJSON(w, http.StatusOK, redeem)
}

package domain

import "errors"

var (
	// Engine input errors. Every engine operation fails fast with one of
	// these; nothing is clamped or retried.
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidMarket   = errors.New("invalid market")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidHoldings = errors.New("invalid holdings")

	// Collaborator errors.
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrWinnerMismatch = errors.New("winner differs from recorded resolution")
	ErrWSDisconnect   = errors.New("websocket disconnected")
)

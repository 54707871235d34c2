package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Input errors
	ErrMsgInvalidAmount     = "invalid amount"
	ErrMsgInvalidInput      = "invalid input"
	ErrMsgInvalidCoordinate = "draw coordinate must be in [0, 1)"

	// Ledger errors
	ErrMsgUserNotFound        = "user not found"
	ErrMsgInsufficientBalance = "insufficient balance"

	// Round errors
	ErrMsgRoundNotAcceptingBets = "round is not accepting bets"
	ErrMsgNoActiveRound         = "no active round"
	ErrMsgDoubleSettlement      = "round has already been settled"
	ErrMsgDrawModeMismatch      = "draw mode does not accept this settlement"
	ErrMsgEngineStopped         = "round engine is stopped"
)

// Round engine errors
// All of these are expected, recoverable rejections: the operation that returned
// one made no change to the ledger or the round.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrInvalidAmount     = errors.New(ErrMsgInvalidAmount)
	ErrInvalidInput      = errors.New(ErrMsgInvalidInput)
	ErrInvalidCoordinate = errors.New(ErrMsgInvalidCoordinate)

	ErrUserNotFound        = errors.New(ErrMsgUserNotFound)
	ErrInsufficientBalance = errors.New(ErrMsgInsufficientBalance)

	ErrRoundNotAcceptingBets = errors.New(ErrMsgRoundNotAcceptingBets)
	ErrNoActiveRound         = errors.New(ErrMsgNoActiveRound)
	ErrDoubleSettlement      = errors.New(ErrMsgDoubleSettlement)
	ErrDrawModeMismatch      = errors.New(ErrMsgDrawModeMismatch)
	ErrEngineStopped         = errors.New(ErrMsgEngineStopped)
)

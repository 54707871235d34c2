package handler

import (
	"errors"
	"net/http"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgInvalidRoundID        = "Invalid round ID"
	ErrMsgInvalidLimit          = "Invalid limit parameter"
	ErrMsgRoundNotFound         = "Round not found in history"
	ErrMsgTooManyBets           = "Too many bets. Slow down."
)

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError     = "Something went wrong"
	ErrMsgUnknownError           = "Unknown error"
	ErrMsgUserNotFoundError      = "User not found"
	ErrMsgInvalidAmountError     = "Bet amount must be a positive number or \"max\""
	ErrMsgInvalidInputError      = "Invalid request. Please check your inputs."
	ErrMsgNotEnoughBalanceError  = "Not enough balance"
	ErrMsgNotAcceptingBetsError  = "The round is not accepting bets right now"
	ErrMsgNoActiveRoundError     = "There is nothing to settle"
	ErrMsgAlreadySettledError    = "The round has already been settled"
	ErrMsgInvalidCoordinateError = "Coordinate must be at least 0 and below 1"
	ErrMsgDrawModeMismatchError  = "Coordinates are only accepted in client draw mode"
	ErrMsgUnavailableError       = "Server is temporarily unavailable. Please try again later."
)

// Success messages for API responses
const (
	MsgUserRegistered    = "User registered"
	MsgUserAlreadyExists = "User already registered"
	MsgNothingToClaim    = "No referral commission pending"
	MsgReferralClaimed   = "Referral commission claimed"
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// messages users can act upon
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, ErrMsgInvalidAmountError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest, ErrMsgNotEnoughBalanceError
	case errors.Is(err, domain.ErrRoundNotAcceptingBets):
		return http.StatusConflict, ErrMsgNotAcceptingBetsError
	case errors.Is(err, domain.ErrNoActiveRound):
		return http.StatusConflict, ErrMsgNoActiveRoundError
	case errors.Is(err, domain.ErrDoubleSettlement):
		return http.StatusConflict, ErrMsgAlreadySettledError
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return http.StatusBadRequest, ErrMsgInvalidCoordinateError
	case errors.Is(err, domain.ErrDrawModeMismatch):
		return http.StatusConflict, ErrMsgDrawModeMismatchError
	case errors.Is(err, domain.ErrEngineStopped):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError logs a failed service call and writes the mapped response
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	statusCode, userMsg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if statusCode >= http.StatusInternalServerError {
		log.Error(opName+" failed", "error", err)
	} else {
		log.Warn(opName+" rejected", "error", err, "status", statusCode)
	}
	respondError(w, statusCode, userMsg)
}

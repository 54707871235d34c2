package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/logger"
	"github.com/osse101/JackpotArena_Go/internal/round"
)

// Route parameters and query parameters
const (
	URLParamRoundID = "id"
	QueryParamLimit = "limit"
	DefaultHistoryN = 10
	MaxHistoryN     = 100
)

// HistoryReader looks up recently settled rounds
type HistoryReader interface {
	Get(roundID uuid.UUID) (domain.SettlementResult, bool)
	Recent(n int) []domain.SettlementResult
}

// BetThrottle limits how often a single user may bet
type BetThrottle interface {
	Allow(ctx context.Context, key string) bool
}

// RoundHandler serves the round engine over HTTP
type RoundHandler struct {
	service  round.Service
	history  HistoryReader
	throttle BetThrottle
}

// NewRoundHandler creates a round handler. history and throttle may be nil.
func NewRoundHandler(service round.Service, history HistoryReader, throttle BetThrottle) *RoundHandler {
	return &RoundHandler{
		service:  service,
		history:  history,
		throttle: throttle,
	}
}

// PlaceBetRequest is the body of POST /bets. Amount is a decimal string or "max".
type PlaceBetRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Amount string `json:"amount" validate:"required,bet"`
}

// SettleRequest is the optional body of POST /round/settle
type SettleRequest struct {
	Coordinate *float64 `json:"coordinate" validate:"omitempty,gte=0,lt=1"`
}

// ClaimReferralRequest is the body of POST /referrals/claim
type ClaimReferralRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// HandlePlaceBet places a bet into the current round
func (h *RoundHandler) HandlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req PlaceBetRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Place bet"); err != nil {
		return
	}

	if h.throttle != nil && !h.throttle.Allow(r.Context(), req.UserID) {
		respondError(w, http.StatusTooManyRequests, ErrMsgTooManyBets)
		return
	}

	bet, err := domain.ParseBet(req.Amount)
	if err != nil {
		respondServiceError(w, r, "Place bet", err)
		return
	}

	receipt, err := h.service.PlaceBet(r.Context(), req.UserID, bet)
	if err != nil {
		respondServiceError(w, r, "Place bet", err)
		return
	}

	respondJSON(w, http.StatusCreated, receipt)
}

// HandleGetRound returns the current round snapshot
func (h *RoundHandler) HandleGetRound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Snapshot(r.Context()))
}

// HandleSettle settles the current round. A coordinate in the body settles
// through the client draw; without one the server draws.
func (h *RoundHandler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.FromContext(r.Context()).Warn("Failed to decode settle request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
	}
	if err := GetValidator().ValidateStruct(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return
	}

	var (
		result *domain.SettlementResult
		err    error
	)
	if req.Coordinate != nil {
		result, err = h.service.SettleAt(r.Context(), *req.Coordinate)
	} else {
		result, err = h.service.Settle(r.Context())
	}
	if err != nil {
		respondServiceError(w, r, "Settle round", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleReset aborts the current round and starts a new one
func (h *RoundHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	reset, err := h.service.Reset(r.Context())
	if err != nil {
		respondServiceError(w, r, "Reset round", err)
		return
	}

	logger.FromContext(r.Context()).Info("Round reset via API",
		"round_id", reset.RoundID,
		"next_round_id", reset.NextRound)
	respondJSON(w, http.StatusOK, reset)
}

// HandleClaimReferral pays out pending referral commission
func (h *RoundHandler) HandleClaimReferral(w http.ResponseWriter, r *http.Request) {
	var req ClaimReferralRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Claim referral"); err != nil {
		return
	}

	claim, err := h.service.ClaimReferral(r.Context(), req.UserID)
	if err != nil {
		respondServiceError(w, r, "Claim referral", err)
		return
	}

	msg := MsgReferralClaimed
	if !claim.Amount.IsPositive() {
		msg = MsgNothingToClaim
	}
	respondJSON(w, http.StatusOK, DataResponse{Message: msg, Data: claim})
}

// HandleGetSettlement returns a recently settled round by id
func (h *RoundHandler) HandleGetSettlement(w http.ResponseWriter, r *http.Request) {
	roundID, err := uuid.Parse(chi.URLParam(r, URLParamRoundID))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRoundID)
		return
	}

	if h.history == nil {
		respondError(w, http.StatusNotFound, ErrMsgRoundNotFound)
		return
	}
	result, ok := h.history.Get(roundID)
	if !ok {
		respondError(w, http.StatusNotFound, ErrMsgRoundNotFound)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleRecentRounds lists recent settlements, newest first
func (h *RoundHandler) HandleRecentRounds(w http.ResponseWriter, r *http.Request) {
	limit, ok := GetOptionalIntQueryParam(r, w, QueryParamLimit, DefaultHistoryN, MaxHistoryN)
	if !ok {
		return
	}

	results := []domain.SettlementResult{}
	if h.history != nil {
		results = append(results, h.history.Recent(limit)...)
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: results})
}

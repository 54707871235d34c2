package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/JackpotArena_Go/internal/domain"
	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// URLParamUserID is the chi route parameter holding a user id
const URLParamUserID = "id"

// UserStore is the part of the ledger the user endpoints need
type UserStore interface {
	Register(id, name, referrerID string) (domain.User, bool, error)
	Get(id string) (domain.User, error)
}

// UserHandler serves ledger accounts
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a user handler
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterUserRequest is the body of POST /users
type RegisterUserRequest struct {
	ID         string `json:"id" validate:"required,max=64"`
	Name       string `json:"name" validate:"max=64"`
	ReferrerID string `json:"ref_by" validate:"omitempty,max=64"`
}

// HandleRegisterUser creates a user on first contact. Registering an existing
// id returns the stored account unchanged.
func (h *UserHandler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Register user"); err != nil {
		return
	}

	user, created, err := h.store.Register(req.ID, req.Name, req.ReferrerID)
	if err != nil {
		respondServiceError(w, r, "Register user", err)
		return
	}

	if !created {
		respondJSON(w, http.StatusOK, DataResponse{Message: MsgUserAlreadyExists, Data: user})
		return
	}

	logger.FromContext(r.Context()).Info("User registered",
		"user_id", user.ID,
		"referred", user.HasReferrer())
	respondJSON(w, http.StatusCreated, DataResponse{Message: MsgUserRegistered, Data: user})
}

// HandleGetUser returns a user's balance and referral fields
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Get(chi.URLParam(r, URLParamUserID))
	if err != nil {
		respondServiceError(w, r, "Get user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"linkvault/internal/engine/reset"
	"linkvault/internal/pkg/errors"
	"linkvault/internal/pkg/validator"
)

type ResetHandler struct {
	resetSvc *reset.Service
}

func NewResetHandler(resetSvc *reset.Service) *ResetHandler {
	return &ResetHandler{resetSvc: resetSvc}
}

type ResetRequestBody struct {
	Email string `json:"email"`
}

// Request always answers 200 with the same body: whether the email exists
// must not be observable, so internal failures are logged and swallowed.
func (h *ResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req ResetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.resetSvc.Request(r.Context(), req.Email); err != nil {
		log.Error().Err(err).Msg("password reset request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

type ResetConfirmBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *ResetHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ResetConfirmBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.ValidatePassword(req.NewPassword); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	if err := h.resetSvc.Confirm(r.Context(), req.Token, req.NewPassword); err != nil {
		if err == reset.ErrInvalidToken {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired reset token", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal error", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

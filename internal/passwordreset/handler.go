package passwordreset

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saludgo/platform/internal/accounts"
	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes the forgot/reset endpoints.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler wires the reset endpoints.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Forgot handles POST /auth/forgot. The response is identical whether
// or not the email matched an account.
func (h *Handler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "email is required"})
		return
	}
	if err := h.svc.Request(r.Context(), req.Email); err != nil {
		h.logger.Error("reset request failed", "error", err)
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "if we found an account, a reset link is on its way",
	})
}

// Reset handles POST /auth/reset/{token}.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "invalid JSON body"})
		return
	}
	if err := h.svc.Confirm(r.Context(), token, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token", "message": ErrInvalidToken.Error()})
		case errors.Is(err, accounts.ErrWeakPassword):
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "weak_password", "message": accounts.ErrWeakPassword.Error()})
		default:
			h.logger.Error("reset confirm failed", "error", err)
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal", "message": "could not reset the password"})
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

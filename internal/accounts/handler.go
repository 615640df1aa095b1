package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saludgo/platform/internal/session"
	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes registration, login and the admin user surface.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler wires the account endpoints.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	acct, err := h.svc.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			respondError(w, http.StatusConflict, "username_taken", "that username is already registered")
		case errors.Is(err, ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "weak_password", ErrWeakPassword.Error())
		case errors.Is(err, ErrInvalidCredentials):
			respondError(w, http.StatusBadRequest, "bad_request", "username is required")
		default:
			h.logger.Error("registration failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal", "could not create the account")
		}
		return
	}
	respondJSON(w, http.StatusCreated, acct)
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	acct, token, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", ErrInvalidCredentials.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not sign in")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": token, "account": acct})
}

// Me handles GET /me for the authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in first")
		return
	}
	acct, err := h.svc.GetByID(r.Context(), principal.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		h.logger.Error("profile lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not load the profile")
		return
	}
	respondJSON(w, http.StatusOK, acct)
}

// UpdateProfile handles PUT /profile for the authenticated account.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in first")
		return
	}
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := h.svc.UpdateContact(r.Context(), principal.AccountID, req.Email, req.Phone); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		h.logger.Error("profile update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not update the profile")
		return
	}
	h.Me(w, r)
}

// AdminDelete handles DELETE /admin/users/{id}.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	principal, _ := session.FromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id, principal.AccountID); err != nil {
		switch {
		case errors.Is(err, ErrSelfDelete):
			respondError(w, http.StatusConflict, "self_delete", ErrSelfDelete.Error())
		case errors.Is(err, ErrNotFound):
			respondError(w, http.StatusNotFound, "not_found", "account not found")
		default:
			h.logger.Error("account delete failed", "error", err, "account_id", id)
			respondError(w, http.StatusInternalServerError, "internal", "could not delete the account")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "deleted": "true"})
}

// AdminList handles GET /admin/users.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	accts, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("user list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not list users")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": accts})
}

// AdminUpdateRole handles PATCH /admin/users/{id}/role.
func (h *Handler) AdminUpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := h.svc.UpdateRole(r.Context(), id, req.Role); err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			respondError(w, http.StatusBadRequest, "invalid_role", ErrInvalidRole.Error())
		case errors.Is(err, ErrNotFound):
			respondError(w, http.StatusNotFound, "not_found", "account not found")
		default:
			h.logger.Error("role update failed", "error", err, "account_id", id)
			respondError(w, http.StatusInternalServerError, "internal", "could not update the role")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "role": req.Role})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

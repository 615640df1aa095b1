package meds

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/saludgo/platform/internal/session"
	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes medication endpoints.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("meds: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type assignPayload struct {
	OwnerID      string `json:"owner_id"`
	Name         string `json:"name"`
	Dose         string `json:"dose"`
	Instructions string `json:"instructions"`
	DeliveryDate string `json:"delivery_date"`
}

// ListMine returns the authenticated account's medications.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to view medications")
		return
	}
	items, err := h.svc.ListByOwner(r.Context(), principal.AccountID)
	if err != nil {
		h.logger.Error("failed to list medications", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list medications")
		return
	}
	if items == nil {
		items = []*Medication{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"medications": items})
}

// AdminAssign creates a medication record for an account.
func (h *Handler) AdminAssign(w http.ResponseWriter, r *http.Request) {
	var payload assignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	med, err := h.svc.Assign(r.Context(), &Medication{
		OwnerID:      payload.OwnerID,
		Name:         payload.Name,
		Dose:         payload.Dose,
		Instructions: payload.Instructions,
		DeliveryDate: payload.DeliveryDate,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_medication", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, med)
}

// AdminList returns recent assignments across all accounts.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list medications", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list medications")
		return
	}
	if items == nil {
		items = []*Medication{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"medications": items})
}

// AdminDelete removes a medication record.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "medication record not found")
			return
		}
		h.logger.Error("failed to delete medication", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not delete medication")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

package facilities

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes the facility directory.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler wires the facility endpoints.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /facilities. ?municipality= filters the directory.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.List(r.Context(), r.URL.Query().Get("municipality"))
	if err != nil {
		h.logger.Error("facility list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not list facilities")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"facilities": out})
}

// AdminCreate handles POST /admin/facilities.
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var f Facility
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil || f.Name == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	created, err := h.repo.Create(r.Context(), &f)
	if err != nil {
		h.logger.Error("facility create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not create the facility")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// AdminUpdate handles PUT /admin/facilities/{id}.
func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var f Facility
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil || f.Name == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	f.ID = chi.URLParam(r, "id")
	if err := h.repo.Update(r.Context(), &f); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "facility not found")
			return
		}
		h.logger.Error("facility update failed", "error", err, "facility_id", f.ID)
		respondError(w, http.StatusInternalServerError, "internal", "could not update the facility")
		return
	}
	respondJSON(w, http.StatusOK, &f)
}

// AdminDelete handles DELETE /admin/facilities/{id}.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "facility not found")
			return
		}
		h.logger.Error("facility delete failed", "error", err, "facility_id", id)
		respondError(w, http.StatusInternalServerError, "internal", "could not delete the facility")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "deleted": "true"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

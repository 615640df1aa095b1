package campaigns

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes campaign endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
	clock  func() time.Time
}

// NewHandler wires the campaign endpoints.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger, clock: time.Now}
}

// List handles GET /campaigns.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("campaign list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not list campaigns")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"campaigns": out})
}

// Upcoming handles GET /campaigns/upcoming, the landing payload feed.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	from := h.clock().Format(dateLayout)
	out, err := h.repo.Upcoming(r.Context(), from, 6)
	if err != nil {
		h.logger.Error("upcoming campaigns failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not list campaigns")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"campaigns": out})
}

// AdminCreate handles POST /admin/campaigns.
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCampaign(w, r)
	if !ok {
		return
	}
	created, err := h.repo.Create(r.Context(), c)
	if err != nil {
		h.logger.Error("campaign create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not create the campaign")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// AdminUpdate handles PUT /admin/campaigns/{id}.
func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCampaign(w, r)
	if !ok {
		return
	}
	c.ID = chi.URLParam(r, "id")
	if err := h.repo.Update(r.Context(), c); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "campaign not found")
			return
		}
		h.logger.Error("campaign update failed", "error", err, "campaign_id", c.ID)
		respondError(w, http.StatusInternalServerError, "internal", "could not update the campaign")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// AdminDelete handles DELETE /admin/campaigns/{id}.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "campaign not found")
			return
		}
		h.logger.Error("campaign delete failed", "error", err, "campaign_id", id)
		respondError(w, http.StatusInternalServerError, "internal", "could not delete the campaign")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "deleted": "true"})
}

func decodeCampaign(w http.ResponseWriter, r *http.Request) (*Campaign, bool) {
	var c Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Title == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "title is required")
		return nil, false
	}
	if _, err := time.Parse(dateLayout, c.StartDate); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "start_date must be YYYY-MM-DD")
		return nil, false
	}
	if c.EndDate != "" {
		if _, err := time.Parse(dateLayout, c.EndDate); err != nil {
			respondError(w, http.StatusBadRequest, "bad_request", "end_date must be YYYY-MM-DD")
			return nil, false
		}
	}
	return &c, true
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

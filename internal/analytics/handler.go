package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes the analytics dashboard.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("analytics: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Dashboard returns the population series and precipitation averages
// in one payload. An optional ?municipality= filter scopes the
// rainfall data.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	population, err := h.svc.PopulationGrowth()
	if err != nil {
		h.logger.Error("failed to compute population series", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "population dataset unavailable")
		return
	}
	municipality := r.URL.Query().Get("municipality")
	precipitation, err := h.svc.PrecipitationAverages(municipality)
	if err != nil {
		h.logger.Error("failed to compute precipitation averages", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "precipitation dataset unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"population":    population,
		"precipitation": precipitation,
		"municipality":  municipality,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

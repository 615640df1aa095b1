package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/saludgo/platform/internal/campaigns"
	"github.com/saludgo/platform/internal/facilities"
	"github.com/saludgo/platform/pkg/logging"
)

// LandingHandler serves the public landing payload: upcoming health
// campaigns plus the facility directory.
type LandingHandler struct {
	campaigns  campaigns.Repository
	facilities facilities.Repository
	logger     *logging.Logger
	clock      func() time.Time
}

// NewLandingHandler creates the landing page handler.
func NewLandingHandler(c campaigns.Repository, f facilities.Repository, logger *logging.Logger) *LandingHandler {
	if c == nil || f == nil {
		panic("handlers: landing requires campaign and facility repositories")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LandingHandler{campaigns: c, facilities: f, logger: logger, clock: time.Now}
}

// GetLanding returns the landing payload.
// GET /landing
func (h *LandingHandler) GetLanding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upcoming, err := h.campaigns.Upcoming(ctx, h.clock().Format("2006-01-02"), 6)
	if err != nil {
		h.logger.Error("landing: failed to load campaigns", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if upcoming == nil {
		upcoming = []*campaigns.Campaign{}
	}

	directory, err := h.facilities.List(ctx, r.URL.Query().Get("municipality"))
	if err != nil {
		h.logger.Error("landing: failed to load facilities", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if directory == nil {
		directory = []*facilities.Facility{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"campaigns":  upcoming,
		"facilities": directory,
	}); err != nil {
		h.logger.Error("landing: failed to encode response", "error", err)
	}
}

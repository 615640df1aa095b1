package community

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes public submission and admin listing endpoints for
// community reports and volunteer slots.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a community handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("community: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type reportPayload struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Municipality string `json:"municipality"`
	Symptoms     string `json:"symptoms"`
	// Website is a honeypot. Humans never see the field; bots that
	// fill every input do.
	Website string `json:"website"`
}

type slotPayload struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Day       string `json:"day"`
	TimeRange string `json:"time_range"`
	Website   string `json:"website"`
}

// SubmitReport accepts a public symptom report.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var payload reportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(payload.Website) != "" {
		// Trapped submission. Answer as if accepted so the bot
		// learns nothing.
		h.logger.Warn("community report dropped by honeypot", "remote", r.RemoteAddr)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if strings.TrimSpace(payload.Symptoms) == "" {
		respondError(w, http.StatusBadRequest, "missing_symptoms", "symptoms description is required")
		return
	}
	report, err := h.repo.CreateReport(r.Context(), &Report{
		Name:         strings.TrimSpace(payload.Name),
		Contact:      strings.TrimSpace(payload.Contact),
		Municipality: strings.TrimSpace(payload.Municipality),
		Symptoms:     strings.TrimSpace(payload.Symptoms),
	})
	if err != nil {
		h.logger.Error("failed to store community report", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not store report")
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// SubmitSlot accepts a public volunteer availability slot.
func (h *Handler) SubmitSlot(w http.ResponseWriter, r *http.Request) {
	var payload slotPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(payload.Website) != "" {
		h.logger.Warn("volunteer slot dropped by honeypot", "remote", r.RemoteAddr)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.Day) == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "name and day are required")
		return
	}
	slot, err := h.repo.CreateSlot(r.Context(), &AvailabilitySlot{
		Name:      strings.TrimSpace(payload.Name),
		Contact:   strings.TrimSpace(payload.Contact),
		Day:       strings.TrimSpace(payload.Day),
		TimeRange: strings.TrimSpace(payload.TimeRange),
	})
	if err != nil {
		h.logger.Error("failed to store volunteer slot", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not store slot")
		return
	}
	respondJSON(w, http.StatusCreated, slot)
}

// AdminReports lists recent symptom reports.
func (h *Handler) AdminReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.repo.RecentReports(r.Context(), queryLimit(r, 50))
	if err != nil {
		h.logger.Error("failed to list community reports", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list reports")
		return
	}
	if reports == nil {
		reports = []*Report{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// AdminSlots lists recent volunteer availability slots.
func (h *Handler) AdminSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.repo.RecentSlots(r.Context(), queryLimit(r, 50))
	if err != nil {
		h.logger.Error("failed to list volunteer slots", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list slots")
		return
	}
	if slots == nil {
		slots = []*AvailabilitySlot{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

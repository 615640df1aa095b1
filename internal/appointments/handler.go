package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/saludgo/platform/internal/session"
	"github.com/saludgo/platform/pkg/logging"
)

// Handler exposes the booking and availability endpoints.
type Handler struct {
	svc    *Service
	avail  *Availability
	logger *logging.Logger
}

// NewHandler wires the HTTP surface for appointments.
func NewHandler(svc *Service, avail *Availability, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, avail: avail, logger: logger}
}

type bookPayload struct {
	Date      string `json:"date"`
	TimeOfDay string `json:"time_of_day"`
	Category  string `json:"category"`
	Location  string `json:"location"`
	Reason    string `json:"reason"`
}

type adminBookPayload struct {
	bookPayload
	OwnerID string `json:"owner_id"`
	Status  string `json:"status"`
}

// Book handles POST /appointments for the authenticated account.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	principal, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to book an appointment")
		return
	}

	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	appt, err := h.svc.Book(r.Context(), BookRequest{
		OwnerID:   principal.AccountID,
		Date:      payload.Date,
		TimeOfDay: payload.TimeOfDay,
		Category:  payload.Category,
		Location:  payload.Location,
		Reason:    payload.Reason,
	})
	if err != nil {
		h.respondBookingError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, appt)
}

// ListMine handles GET /appointments.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to list appointments")
		return
	}
	appts, err := h.svc.ListByOwner(r.Context(), principal.AccountID)
	if err != nil {
		h.logger.Error("list appointments failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not list appointments")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// Availability handles GET /appointments/availability. The answer is
// advisory: a date absent from disabled_dates may still be rejected at
// booking time.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	disabled, err := h.avail.DisabledDates(r.Context())
	if err != nil {
		h.logger.Error("availability query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not compute availability")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"disabled_dates": disabled,
		"daily_max":      h.svc.DailyMax(),
		"horizon_days":   h.avail.Horizon(),
	})
}

// AdminCreate handles POST /admin/appointments. It runs the same
// admission path as self-service booking.
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var payload adminBookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	appt, err := h.svc.BookForAccount(r.Context(), BookRequest{
		OwnerID:   payload.OwnerID,
		Date:      payload.Date,
		TimeOfDay: payload.TimeOfDay,
		Category:  payload.Category,
		Location:  payload.Location,
		Reason:    payload.Reason,
	}, payload.Status)
	if err != nil {
		h.respondBookingError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, appt)
}

// AdminList handles GET /admin/appointments.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	appts, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("admin list appointments failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "could not list appointments")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// AdminUpdateStatus handles PATCH /admin/appointments/{id}/status.
func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Status == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "status is required")
		return
	}
	if err := h.svc.UpdateStatus(r.Context(), id, payload.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "appointment not found")
			return
		}
		h.logger.Error("status update failed", "error", err, "appointment_id", id)
		respondError(w, http.StatusInternalServerError, "internal", "could not update status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": payload.Status})
}

// AdminDelete handles DELETE /admin/appointments/{id}.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "appointment not found")
			return
		}
		h.logger.Error("appointment delete failed", "error", err, "appointment_id", id)
		respondError(w, http.StatusInternalServerError, "internal", "could not delete the appointment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "deleted": "true"})
}

func (h *Handler) respondBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingOwner):
		respondError(w, http.StatusBadRequest, CodeInvalidDate, "owner is required")
	case errors.Is(err, ErrInvalidDate):
		respondError(w, http.StatusBadRequest, CodeInvalidDate, "date must be YYYY-MM-DD")
	case errors.Is(err, ErrPastDate):
		respondError(w, http.StatusUnprocessableEntity, CodePastDate, "date is in the past")
	case errors.Is(err, ErrCapacityExceeded):
		respondError(w, http.StatusConflict, CodeCapacityExceeded, "no slots left for that date")
	case errors.Is(err, ErrBusy):
		respondError(w, http.StatusServiceUnavailable, CodeBusy, "date is busy, retry shortly")
	default:
		h.logger.Error("booking failed", "error", err)
		respondError(w, http.StatusInternalServerError, CodePersistence, "could not store the appointment")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

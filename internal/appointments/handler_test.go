package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saludgo/platform/internal/session"
)

func newTestHandler(t *testing.T, dailyMax int) (*Handler, func() time.Time) {
	t.Helper()
	clock := fixedClock()
	store := newSpyStore(clock)
	policy := NewPolicy(dailyMax)
	svc := NewService(store, policy, nil, nil, nil).WithClock(clock)
	avail := NewAvailability(store, policy, 30, nil, nil).WithClock(clock)
	return NewHandler(svc, avail, nil), clock
}

func asPrincipal(r *http.Request, p session.Principal) *http.Request {
	return r.WithContext(session.WithPrincipal(r.Context(), p))
}

func TestHandlerBookCreated(t *testing.T) {
	h, clock := newTestHandler(t, 10)

	body := `{"date":"` + dateFromNow(clock, 1) + `","reason":"checkup"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req = asPrincipal(req, session.Principal{AccountID: "acct-1"})
	rec := httptest.NewRecorder()

	h.Book(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if appt.OwnerID != "acct-1" || appt.Status != StatusScheduled {
		t.Fatalf("response = %+v", appt)
	}
}

func TestHandlerBookRequiresSession(t *testing.T) {
	h, clock := newTestHandler(t, 10)

	body := `{"date":"` + dateFromNow(clock, 1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Book(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandlerBookErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		date string
		code int
		want string
	}{
		{"malformed date", "01/09/2026", http.StatusBadRequest, CodeInvalidDate},
		{"past date", "-1", http.StatusUnprocessableEntity, CodePastDate},
		{"full day", "full", http.StatusConflict, CodeCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, clock := newTestHandler(t, 1)

			date := tt.date
			switch date {
			case "-1":
				date = dateFromNow(clock, -1)
			case "full":
				date = dateFromNow(clock, 1)
				if _, err := h.svc.Book(context.Background(), BookRequest{OwnerID: "x", Date: date}); err != nil {
					t.Fatalf("filling the day: %v", err)
				}
			}

			body := `{"date":"` + date + `"}`
			req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
			req = asPrincipal(req, session.Principal{AccountID: "acct-1"})
			rec := httptest.NewRecorder()

			h.Book(rec, req)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			var payload map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if payload["error"] != tt.want {
				t.Fatalf("error code = %q, want %q", payload["error"], tt.want)
			}
		})
	}
}

func TestHandlerBookRejectsBadJSON(t *testing.T) {
	h, _ := newTestHandler(t, 10)
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader("{not json"))
	req = asPrincipal(req, session.Principal{AccountID: "acct-1"})
	rec := httptest.NewRecorder()

	h.Book(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandlerAvailability(t *testing.T) {
	h, clock := newTestHandler(t, 1)

	full := dateFromNow(clock, 1)
	if _, err := h.svc.Book(context.Background(), BookRequest{OwnerID: "x", Date: full}); err != nil {
		t.Fatalf("filling the day: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/appointments/availability", nil)
	rec := httptest.NewRecorder()
	h.Availability(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var payload struct {
		DisabledDates []string `json:"disabled_dates"`
		DailyMax      int      `json:"daily_max"`
		HorizonDays   int      `json:"horizon_days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.DisabledDates) != 1 || payload.DisabledDates[0] != full {
		t.Fatalf("disabled_dates = %v, want [%s]", payload.DisabledDates, full)
	}
	if payload.DailyMax != 1 || payload.HorizonDays != 30 {
		t.Fatalf("daily_max = %d horizon_days = %d", payload.DailyMax, payload.HorizonDays)
	}
}

func TestHandlerListMine(t *testing.T) {
	h, clock := newTestHandler(t, 10)

	if _, err := h.svc.Book(context.Background(), BookRequest{OwnerID: "acct-1", Date: dateFromNow(clock, 1)}); err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := h.svc.Book(context.Background(), BookRequest{OwnerID: "acct-2", Date: dateFromNow(clock, 1)}); err != nil {
		t.Fatalf("Book: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req = asPrincipal(req, session.Principal{AccountID: "acct-1"})
	rec := httptest.NewRecorder()
	h.ListMine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var payload struct {
		Appointments []Appointment `json:"appointments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Appointments) != 1 || payload.Appointments[0].OwnerID != "acct-1" {
		t.Fatalf("appointments = %v", payload.Appointments)
	}
}

func TestHandlerAdminCreateAndStatus(t *testing.T) {
	h, clock := newTestHandler(t, 10)

	body := `{"owner_id":"acct-9","date":"` + dateFromNow(clock, 1) + `","status":"Completed"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AdminCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if appt.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", appt.Status, StatusCompleted)
	}

	r := chi.NewRouter()
	r.Patch("/admin/appointments/{id}/status", h.AdminUpdateStatus)
	req = httptest.NewRequest(http.MethodPatch, "/admin/appointments/"+appt.ID+"/status", strings.NewReader(`{"status":"Cancelled"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPatch, "/admin/appointments/unknown/status", strings.NewReader(`{"status":"Cancelled"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

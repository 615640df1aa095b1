package campaigns

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func seed(t *testing.T, repo Repository, title, start string) *Campaign {
	t.Helper()
	c, err := repo.Create(context.Background(), &Campaign{Title: title, StartDate: start})
	if err != nil {
		t.Fatalf("Create %s: %v", title, err)
	}
	return c
}

func TestUpcomingOrdersAndLimits(t *testing.T) {
	repo := NewInMemoryRepository()
	seed(t, repo, "past", "2026-01-10")
	seed(t, repo, "soon", "2026-09-05")
	seed(t, repo, "later", "2026-10-01")
	for i := 0; i < 6; i++ {
		seed(t, repo, "filler", "2026-11-01")
	}

	out, err := repo.Upcoming(context.Background(), "2026-09-01", 6)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(out) != 6 {
		t.Fatalf("listed %d campaigns, want 6", len(out))
	}
	if out[0].Title != "soon" || out[1].Title != "later" {
		t.Fatalf("order = %s, %s", out[0].Title, out[1].Title)
	}
	for _, c := range out {
		if c.StartDate < "2026-09-01" {
			t.Fatalf("past campaign %q leaked into upcoming", c.Title)
		}
	}
}

func TestHandlerCreateValidatesDates(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	tests := []struct {
		body string
		code int
	}{
		{`{"start_date":"2026-09-01"}`, http.StatusBadRequest},
		{`{"title":"Vacunación","start_date":"01/09/2026"}`, http.StatusBadRequest},
		{`{"title":"Vacunación","start_date":"2026-09-01","end_date":"bad"}`, http.StatusBadRequest},
		{`{"title":"Vacunación","start_date":"2026-09-01"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/admin/campaigns", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		h.AdminCreate(rec, req)
		if rec.Code != tt.code {
			t.Fatalf("body %s: status = %d, want %d", tt.body, rec.Code, tt.code)
		}
	}
}

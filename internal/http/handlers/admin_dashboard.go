// Package handlers contains HTTP handlers that aggregate across
// feature packages, mostly for the admin console.
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/saludgo/platform/pkg/logging"
)

// AdminDashboardHandler serves the admin console overview endpoint.
type AdminDashboardHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminDashboardHandler creates an admin dashboard handler.
func NewAdminDashboardHandler(db *sql.DB, logger *logging.Logger) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminDashboardHandler{db: db, logger: logger}
}

// DashboardResponse is the admin console overview payload.
type DashboardResponse struct {
	Counts       EntityCounts  `json:"counts"`
	Appointments StatusSummary `json:"appointments"`
	Community    CommunityFeed `json:"community"`
	GeneratedAt  string        `json:"generated_at"`
}

// EntityCounts holds row totals per entity.
type EntityCounts struct {
	Users        int `json:"users"`
	Facilities   int `json:"facilities"`
	Campaigns    int `json:"campaigns"`
	Appointments int `json:"appointments"`
	Medications  int `json:"medications"`
	Reports      int `json:"reports"`
	Volunteers   int `json:"volunteers"`
}

// StatusSummary breaks appointments down by status along with the
// near-term load.
type StatusSummary struct {
	ByStatus map[string]int `json:"by_status"`
	NextWeek int            `json:"next_week"`
}

// CommunityFeed carries the most recent community submissions.
type CommunityFeed struct {
	Reports []ReportItem `json:"reports"`
	Slots   []SlotItem   `json:"slots"`
}

// ReportItem is a symptom report row in the dashboard feed.
type ReportItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Municipality string `json:"municipality,omitempty"`
	Symptoms     string `json:"symptoms"`
	CreatedAt    string `json:"created_at"`
}

// SlotItem is a volunteer slot row in the dashboard feed.
type SlotItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Day       string `json:"day"`
	TimeRange string `json:"time_range"`
	CreatedAt string `json:"created_at"`
}

// GetDashboard returns the admin console overview.
// GET /admin/dashboard
func (h *AdminDashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := DashboardResponse{
		Appointments: StatusSummary{ByStatus: map[string]int{}},
		Community:    CommunityFeed{Reports: []ReportItem{}, Slots: []SlotItem{}},
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	counts := []struct {
		table string
		dst   *int
	}{
		{"users", &resp.Counts.Users},
		{"facilities", &resp.Counts.Facilities},
		{"campaigns", &resp.Counts.Campaigns},
		{"appointments", &resp.Counts.Appointments},
		{"medications", &resp.Counts.Medications},
		{"community_reports", &resp.Counts.Reports},
		{"availability_slots", &resp.Counts.Volunteers},
	}
	for _, c := range counts {
		if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dst); err != nil {
			h.logger.Error("dashboard count query failed", "table", c.table, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	if err := h.loadStatusBreakdown(r, &resp); err != nil {
		h.logger.Error("dashboard status breakdown failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.loadCommunityFeed(r, &resp); err != nil {
		h.logger.Error("dashboard community feed failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode dashboard response", "error", err)
	}
}

func (h *AdminDashboardHandler) loadStatusBreakdown(r *http.Request, resp *DashboardResponse) error {
	ctx := r.Context()

	rows, err := h.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return err
		}
		resp.Appointments.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now()
	return h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE date >= $1 AND date < $2`,
		now.Format("2006-01-02"), now.AddDate(0, 0, 7).Format("2006-01-02"),
	).Scan(&resp.Appointments.NextWeek)
}

func (h *AdminDashboardHandler) loadCommunityFeed(r *http.Request, resp *DashboardResponse) error {
	ctx := r.Context()

	reportRows, err := h.db.QueryContext(ctx, `
		SELECT id, name, municipality, symptoms, created_at
		FROM community_reports
		ORDER BY created_at DESC
		LIMIT 5
	`)
	if err != nil {
		return err
	}
	defer reportRows.Close()
	for reportRows.Next() {
		var item ReportItem
		var municipality sql.NullString
		var createdAt time.Time
		if err := reportRows.Scan(&item.ID, &item.Name, &municipality, &item.Symptoms, &createdAt); err != nil {
			return err
		}
		item.Municipality = municipality.String
		item.CreatedAt = createdAt.Format(time.RFC3339)
		resp.Community.Reports = append(resp.Community.Reports, item)
	}
	if err := reportRows.Err(); err != nil {
		return err
	}

	slotRows, err := h.db.QueryContext(ctx, `
		SELECT id, name, day, time_range, created_at
		FROM availability_slots
		ORDER BY created_at DESC
		LIMIT 5
	`)
	if err != nil {
		return err
	}
	defer slotRows.Close()
	for slotRows.Next() {
		var item SlotItem
		var createdAt time.Time
		if err := slotRows.Scan(&item.ID, &item.Name, &item.Day, &item.TimeRange, &createdAt); err != nil {
			return err
		}
		item.CreatedAt = createdAt.Format(time.RFC3339)
		resp.Community.Slots = append(resp.Community.Slots, item)
	}
	return slotRows.Err()
}

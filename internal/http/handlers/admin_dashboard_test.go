package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectDashboardCounts(mock sqlmock.Sqlmock, counts map[string]int) {
	for _, table := range []string{
		"users", "facilities", "campaigns", "appointments",
		"medications", "community_reports", "availability_slots",
	} {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ` + table).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(counts[table]))
	}
}

func TestGetDashboard_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewAdminDashboardHandler(db, nil)

	expectDashboardCounts(mock, map[string]int{
		"users":              12,
		"facilities":         3,
		"campaigns":          2,
		"appointments":       40,
		"medications":        7,
		"community_reports":  5,
		"availability_slots": 4,
	})

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM appointments GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Scheduled", 30).
			AddRow("Completed", 8).
			AddRow("Cancelled", 2))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE date >=`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, name, municipality, symptoms, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "municipality", "symptoms", "created_at"}).
			AddRow("rep-1", "Ana", "Coban", "fever", now).
			AddRow("rep-2", "Luis", nil, "cough", now.Add(-time.Hour)))

	mock.ExpectQuery(`SELECT id, name, day, time_range, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "day", "time_range", "created_at"}).
			AddRow("slot-1", "Maria", "saturday", "08:00-12:00", now))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 12, resp.Counts.Users)
	assert.Equal(t, 40, resp.Counts.Appointments)
	assert.Equal(t, 4, resp.Counts.Volunteers)
	assert.Equal(t, 30, resp.Appointments.ByStatus["Scheduled"])
	assert.Equal(t, 9, resp.Appointments.NextWeek)
	require.Len(t, resp.Community.Reports, 2)
	assert.Equal(t, "Ana", resp.Community.Reports[0].Name)
	assert.Empty(t, resp.Community.Reports[1].Municipality)
	require.Len(t, resp.Community.Slots, 1)
	assert.Equal(t, "saturday", resp.Community.Slots[0].Day)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDashboard_CountQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewAdminDashboardHandler(db, nil)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnError(assert.AnError)

	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetDashboard_EmptyDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewAdminDashboardHandler(db, nil)

	expectDashboardCounts(mock, map[string]int{})
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM appointments GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE date >=`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT id, name, municipality, symptoms, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "municipality", "symptoms", "created_at"}))
	mock.ExpectQuery(`SELECT id, name, day, time_range, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "day", "time_range", "created_at"}))

	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Appointments.ByStatus)
	assert.Empty(t, resp.Community.Reports)
	assert.Empty(t, resp.Community.Slots)
}

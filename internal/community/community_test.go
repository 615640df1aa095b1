package community

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentReportsNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, symptoms := range []string{"fever", "cough", "headache"} {
		_, err := repo.CreateReport(ctx, &Report{Name: "ana", Symptoms: symptoms})
		require.NoError(t, err)
	}

	reports, err := repo.RecentReports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.True(t, !reports[0].CreatedAt.Before(reports[1].CreatedAt))
}

func TestSubmitReportStoresTrimmedFields(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)

	body := `{"name":"  Ana Lopez ","municipality":"Cobán","symptoms":" fever and chills "}`
	req := httptest.NewRequest(http.MethodPost, "/community/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SubmitReport(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Ana Lopez", report.Name)
	assert.Equal(t, "fever and chills", report.Symptoms)
	assert.NotEmpty(t, report.ID)
}

func TestSubmitReportHoneypotDropsSilently(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)

	body := `{"name":"bot","symptoms":"anything","website":"http://spam.example"}`
	req := httptest.NewRequest(http.MethodPost, "/community/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SubmitReport(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	reports, err := repo.RecentReports(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestSubmitReportRequiresSymptoms(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	req := httptest.NewRequest(http.MethodPost, "/community/report", strings.NewReader(`{"name":"ana"}`))
	rec := httptest.NewRecorder()
	h.SubmitReport(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_symptoms")
}

func TestSubmitSlotHoneypotDropsSilently(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)

	body := `{"name":"bot","day":"monday","website":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/community/availability", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SubmitSlot(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	slots, err := repo.RecentSlots(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSubmitSlotRequiresNameAndDay(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	req := httptest.NewRequest(http.MethodPost, "/community/availability", strings.NewReader(`{"name":"maria"}`))
	rec := httptest.NewRecorder()
	h.SubmitSlot(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminListingsReturnEmptyCollections(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	rec := httptest.NewRecorder()
	h.AdminReports(rec, httptest.NewRequest(http.MethodGet, "/admin/community/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.AdminSlots(rec, httptest.NewRequest(http.MethodGet, "/admin/community/availability", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"slots":[]}`, rec.Body.String())
}

func TestAdminSlotsHonorsLimit(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := repo.CreateSlot(ctx, &AvailabilitySlot{Name: "v", Day: "monday", TimeRange: "am"})
		require.NoError(t, err)
	}
	h := NewHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.AdminSlots(rec, httptest.NewRequest(http.MethodGet, "/admin/community/availability?limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Slots []*AvailabilitySlot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Slots, 3)
}

package appointments

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return newPostgresStoreWithQuerier(mock), mock
}

func TestPostgresCountByDate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM appointments WHERE date = $1`)).
		WithArgs("2026-09-01").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := store.CountByDate(context.Background(), "2026-09-01")
	if err != nil {
		t.Fatalf("CountByDate: %v", err)
	}
	if n != 7 {
		t.Fatalf("count = %d, want 7", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresCountsInRange(t *testing.T) {
	store, mock := newMockStore(t)

	day1 := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT date, COUNT\(\*\)`).
		WithArgs("2026-09-01", "2026-09-30").
		WillReturnRows(pgxmock.NewRows([]string{"date", "count"}).
			AddRow(day1, 10).
			AddRow(day3, 2))

	counts, err := store.CountsInRange(context.Background(), "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("CountsInRange: %v", err)
	}
	if counts["2026-09-01"] != 10 || counts["2026-09-03"] != 2 {
		t.Fatalf("counts = %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresInsertReturnsStoredRow(t *testing.T) {
	store, mock := newMockStore(t)

	created := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), "acct-1", "2026-09-01", "10:00", DefaultCategory, DefaultLocation, "checkup", StatusScheduled).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	appt, err := store.Insert(context.Background(), &Appointment{
		OwnerID:   "acct-1",
		Date:      "2026-09-01",
		TimeOfDay: "10:00",
		Category:  DefaultCategory,
		Location:  DefaultLocation,
		Reason:    "checkup",
		Status:    StatusScheduled,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if appt.ID == "" {
		t.Fatal("insert did not assign an id")
	}
	if !appt.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v, want %v", appt.CreatedAt, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresInsertFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), "acct-1", "2026-09-01", "", DefaultCategory, DefaultLocation, "", StatusScheduled).
		WillReturnError(errors.New("connection reset"))

	_, err := store.Insert(context.Background(), &Appointment{
		OwnerID:  "acct-1",
		Date:     "2026-09-01",
		Category: DefaultCategory,
		Location: DefaultLocation,
		Status:   StatusScheduled,
	})
	if err == nil {
		t.Fatal("expected an error from the failed insert")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUpdateStatusNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE appointments SET status`).
		WithArgs("missing", StatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.UpdateStatus(context.Background(), "missing", StatusCancelled)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateStatus error = %v, want %v", err, ErrNotFound)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresListByOwnerOrdersAscending(t *testing.T) {
	store, mock := newMockStore(t)

	day := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, time.August, 30, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM appointments\s+WHERE owner_id = \$1\s+ORDER BY date ASC, time_of_day ASC`).
		WithArgs("acct-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "owner_id", "date", "time_of_day", "category", "location", "reason", "status", "created_at",
		}).AddRow("id-1", "acct-1", day, "09:00", DefaultCategory, DefaultLocation, "", StatusScheduled, created))

	appts, err := store.ListByOwner(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(appts) != 1 || appts[0].Date != "2026-09-01" {
		t.Fatalf("appointments = %v", appts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the subset of pgxpool.Pool the store needs; it also
// matches the pgxmock pool so tests can inject expectations.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists appointments in the relational database.
type PostgresStore struct {
	db pgxQuerier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// newPostgresStoreWithQuerier allows injecting mocks for tests.
func newPostgresStoreWithQuerier(q pgxQuerier) *PostgresStore {
	return &PostgresStore{db: q}
}

func (s *PostgresStore) CountByDate(ctx context.Context, date string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM appointments WHERE date = $1`
	if err := s.db.QueryRow(ctx, query, date).Scan(&n); err != nil {
		return 0, fmt.Errorf("appointments: count by date: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountsInRange(ctx context.Context, startDate, endDate string) (map[string]int, error) {
	query := `
		SELECT date, COUNT(*)
		FROM appointments
		WHERE date BETWEEN $1 AND $2
		GROUP BY date
	`
	rows, err := s.db.Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("appointments: counts in range: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("appointments: scan count row: %w", err)
		}
		counts[day.Format(DateLayout)] = n
	}
	return counts, rows.Err()
}

func (s *PostgresStore) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	stored := *appt
	stored.ID = uuid.NewString()
	query := `
		INSERT INTO appointments (id, owner_id, date, time_of_day, category, location, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	if err := s.db.QueryRow(ctx, query,
		stored.ID,
		stored.OwnerID,
		stored.Date,
		stored.TimeOfDay,
		stored.Category,
		stored.Location,
		stored.Reason,
		stored.Status,
	).Scan(&stored.CreatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*Appointment, error) {
	query := `
		SELECT id, owner_id, date, time_of_day, category, location, reason, status, created_at
		FROM appointments
		WHERE owner_id = $1
		ORDER BY date ASC, time_of_day ASC
	`
	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by owner: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var a Appointment
		var day time.Time
		if err := rows.Scan(&a.ID, &a.OwnerID, &day, &a.TimeOfDay, &a.Category, &a.Location, &a.Reason, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		a.Date = day.Format(DateLayout)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, owner_id, date, time_of_day, category, location, reason, status, created_at
		FROM appointments
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list recent: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var a Appointment
		var day time.Time
		if err := rows.Scan(&a.ID, &a.OwnerID, &day, &a.TimeOfDay, &a.Category, &a.Location, &a.Reason, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		a.Date = day.Format(DateLayout)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE appointments SET status = $2 WHERE id = $1`
	ct, err := s.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)

// Package community collects symptom reports and volunteer
// availability submitted by the public.
package community

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Report is a community symptom report.
type Report struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact,omitempty"`
	Municipality string    `json:"municipality,omitempty"`
	Symptoms     string    `json:"symptoms"`
	CreatedAt    time.Time `json:"created_at"`
}

// AvailabilitySlot is a volunteer's offered time slot.
type AvailabilitySlot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Day       string    `json:"day"`
	TimeRange string    `json:"time_range"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists community submissions.
type Repository interface {
	CreateReport(ctx context.Context, r *Report) (*Report, error)
	RecentReports(ctx context.Context, limit int) ([]*Report, error)
	CreateSlot(ctx context.Context, s *AvailabilitySlot) (*AvailabilitySlot, error)
	RecentSlots(ctx context.Context, limit int) ([]*AvailabilitySlot, error)
}

// InMemoryRepository is a mutex-guarded Repository for tests and dev
// mode.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reports []*Report
	slots   []*AvailabilitySlot
	clock   func() time.Time
}

// NewInMemoryRepository creates an empty community repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{clock: time.Now}
}

func (r *InMemoryRepository) CreateReport(ctx context.Context, rep *Report) (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *rep
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.clock().UTC()
	r.reports = append(r.reports, &stored)
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) RecentReports(ctx context.Context, limit int) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Report, 0, len(r.reports))
	for _, rep := range r.reports {
		cp := *rep
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) CreateSlot(ctx context.Context, s *AvailabilitySlot) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *s
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.clock().UTC()
	r.slots = append(r.slots, &stored)
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) RecentSlots(ctx context.Context, limit int) ([]*AvailabilitySlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*AvailabilitySlot, 0, len(r.slots))
	for _, s := range r.slots {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists community submissions in the relational
// database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repository backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("community: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) CreateReport(ctx context.Context, rep *Report) (*Report, error) {
	stored := *rep
	stored.ID = uuid.NewString()
	query := `
		INSERT INTO community_reports (id, name, contact, municipality, symptoms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, stored.ID, stored.Name, stored.Contact, stored.Municipality, stored.Symptoms).
		Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("community: insert report: %w", err)
	}
	return &stored, nil
}

func (r *PostgresRepository) RecentReports(ctx context.Context, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, name, contact, municipality, symptoms, created_at
		FROM community_reports
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("community: list reports: %w", err)
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.Name, &rep.Contact, &rep.Municipality, &rep.Symptoms, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("community: scan report: %w", err)
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateSlot(ctx context.Context, s *AvailabilitySlot) (*AvailabilitySlot, error) {
	stored := *s
	stored.ID = uuid.NewString()
	query := `
		INSERT INTO availability_slots (id, name, contact, day, time_range)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, stored.ID, stored.Name, stored.Contact, stored.Day, stored.TimeRange).
		Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("community: insert slot: %w", err)
	}
	return &stored, nil
}

func (r *PostgresRepository) RecentSlots(ctx context.Context, limit int) ([]*AvailabilitySlot, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, name, contact, day, time_range, created_at
		FROM availability_slots
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("community: list slots: %w", err)
	}
	defer rows.Close()

	var out []*AvailabilitySlot
	for rows.Next() {
		var s AvailabilitySlot
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Day, &s.TimeRange, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("community: scan slot: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)

// Package meds tracks medication deliveries assigned to accounts by
// administrators.
package meds

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the medication record does not exist.
var ErrNotFound = errors.New("meds: medication record not found")

// Medication is a single assigned delivery.
type Medication struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Dose         string    `json:"dose,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	DeliveryDate string    `json:"delivery_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists medication assignments.
type Repository interface {
	Create(ctx context.Context, m *Medication) (*Medication, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Medication, error)
	ListRecent(ctx context.Context, limit int) ([]*Medication, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a mutex-guarded Repository for tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Medication
	clock func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]*Medication), clock: time.Now}
}

func (r *InMemoryRepository) Create(ctx context.Context, m *Medication) (*Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *m
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.clock().UTC()
	r.items[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Medication
	for _, m := range r.items {
		if m.OwnerID == ownerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliveryDate > out[j].DeliveryDate })
	return out, nil
}

func (r *InMemoryRepository) ListRecent(ctx context.Context, limit int) ([]*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Medication, 0, len(r.items))
	for _, m := range r.items {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists medication assignments in Postgres.
type PostgresRepository struct {
	db pgxQuerier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("meds: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

const medColumns = "id, owner_id, name, dose, instructions, delivery_date, created_at"

func (r *PostgresRepository) Create(ctx context.Context, m *Medication) (*Medication, error) {
	stored := *m
	stored.ID = uuid.NewString()
	query := `
		INSERT INTO medications (id, owner_id, name, dose, instructions, delivery_date)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		stored.ID, stored.OwnerID, stored.Name, stored.Dose, stored.Instructions, stored.DeliveryDate,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("meds: insert medication: %w", err)
	}
	return &stored, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Medication, error) {
	query := `
		SELECT ` + medColumns + `
		FROM medications
		WHERE owner_id = $1
		ORDER BY delivery_date DESC NULLS LAST
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("meds: list by owner: %w", err)
	}
	defer rows.Close()
	return scanMedications(rows)
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*Medication, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + medColumns + `
		FROM medications
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("meds: list recent: %w", err)
	}
	defer rows.Close()
	return scanMedications(rows)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("meds: delete medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMedications(rows pgx.Rows) ([]*Medication, error) {
	var out []*Medication
	for rows.Next() {
		var m Medication
		var deliveryDate *time.Time
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dose, &m.Instructions, &deliveryDate, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("meds: scan medication: %w", err)
		}
		if deliveryDate != nil {
			m.DeliveryDate = deliveryDate.Format("2006-01-02")
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)

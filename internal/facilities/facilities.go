// Package facilities maintains the directory of health facilities.
package facilities

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no facility matches the id.
var ErrNotFound = errors.New("facility not found")

// Facility is one entry in the directory.
type Facility struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Department   string    `json:"department"`
	Municipality string    `json:"municipality"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Capacity     int       `json:"capacity"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists facilities.
type Repository interface {
	Create(ctx context.Context, f *Facility) (*Facility, error)
	GetByID(ctx context.Context, id string) (*Facility, error)
	List(ctx context.Context, municipality string) ([]*Facility, error)
	Update(ctx context.Context, f *Facility) error
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a mutex-guarded Repository for tests and dev
// mode.
type InMemoryRepository struct {
	mu    sync.RWMutex
	rows  map[string]*Facility
	clock func() time.Time
}

// NewInMemoryRepository creates an empty directory.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows:  make(map[string]*Facility),
		clock: time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, f *Facility) (*Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *f
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.clock().UTC()
	r.rows[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context, municipality string) ([]*Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Facility, 0, len(r.rows))
	for _, f := range r.rows {
		if municipality != "" && !strings.EqualFold(f.Municipality, municipality) {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, f *Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[f.ID]
	if !ok {
		return ErrNotFound
	}
	created := existing.CreatedAt
	cp := *f
	cp.CreatedAt = created
	r.rows[f.ID] = &cp
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists facilities in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repository backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("facilities: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

const facilityColumns = `id, name, type, department, municipality, lat, lon, capacity, available, created_at`

func (r *PostgresRepository) Create(ctx context.Context, f *Facility) (*Facility, error) {
	stored := *f
	stored.ID = uuid.NewString()
	query := `
		INSERT INTO facilities (id, name, type, department, municipality, lat, lon, capacity, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		stored.ID, stored.Name, stored.Type, stored.Department, stored.Municipality,
		stored.Lat, stored.Lon, stored.Capacity, stored.Available,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("facilities: insert: %w", err)
	}
	return &stored, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Facility, error) {
	var f Facility
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.Type, &f.Department, &f.Municipality,
		&f.Lat, &f.Lon, &f.Capacity, &f.Available, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("facilities: lookup: %w", err)
	}
	return &f, nil
}

func (r *PostgresRepository) List(ctx context.Context, municipality string) ([]*Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities ORDER BY name ASC`
	args := []any{}
	if municipality != "" {
		query = `SELECT ` + facilityColumns + ` FROM facilities WHERE lower(municipality) = lower($1) ORDER BY name ASC`
		args = append(args, municipality)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("facilities: list: %w", err)
	}
	defer rows.Close()

	var out []*Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Type, &f.Department, &f.Municipality,
			&f.Lat, &f.Lon, &f.Capacity, &f.Available, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("facilities: scan row: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, f *Facility) error {
	query := `
		UPDATE facilities
		SET name = $2, type = $3, department = $4, municipality = $5,
		    lat = $6, lon = $7, capacity = $8, available = $9
		WHERE id = $1
	`
	ct, err := r.db.Exec(ctx, query,
		f.ID, f.Name, f.Type, f.Department, f.Municipality,
		f.Lat, f.Lon, f.Capacity, f.Available,
	)
	if err != nil {
		return fmt.Errorf("facilities: update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("facilities: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)

// SeedDemo loads a small demo directory when the repository is empty.
func SeedDemo(ctx context.Context, repo Repository) error {
	existing, err := repo.List(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	demo := []*Facility{
		{Name: "Centro de Salud Norte", Type: "health_center", Department: "Guatemala", Municipality: "Mixco", Lat: 14.63, Lon: -90.61, Capacity: 120, Available: true},
		{Name: "Hospital Regional", Type: "hospital", Department: "Guatemala", Municipality: "Guatemala", Lat: 14.62, Lon: -90.52, Capacity: 450, Available: true},
		{Name: "Puesto de Salud Sur", Type: "health_post", Department: "Guatemala", Municipality: "Villa Nueva", Lat: 14.52, Lon: -90.58, Capacity: 40, Available: false},
	}
	for _, f := range demo {
		if _, err := repo.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

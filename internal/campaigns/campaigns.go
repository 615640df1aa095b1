// Package campaigns manages health outreach campaigns.
package campaigns

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

// ErrNotFound is returned when no campaign matches the id.
var ErrNotFound = errors.New("campaign not found")

const dateLayout = "2006-01-02"

// Campaign is one outreach campaign.
type Campaign struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Municipality string    `json:"municipality,omitempty"`
	StartDate    string    `json:"start_date"` // dateLayout
	EndDate      string    `json:"end_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists campaigns.
type Repository interface {
	Create(ctx context.Context, c *Campaign) (*Campaign, error)
	List(ctx context.Context) ([]*Campaign, error)
	// Upcoming returns campaigns starting on or after from, soonest
	// first, capped at limit.
	Upcoming(ctx context.Context, from string, limit int) ([]*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a mutex-guarded Repository for tests and dev
// mode.
type InMemoryRepository struct {
	mu    sync.RWMutex
	rows  map[string]*Campaign
	clock func() time.Time
}

// NewInMemoryRepository creates an empty campaign repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows:  make(map[string]*Campaign),
		clock: time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, c *Campaign) (*Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.clock().UTC()
	r.rows[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Campaign, 0, len(r.rows))
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out, nil
}

func (r *InMemoryRepository) Upcoming(ctx context.Context, from string, limit int) ([]*Campaign, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Campaign, 0, limit)
	for _, c := range all {
		if c.StartDate >= from {
			out = append(out, c)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, c *Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[c.ID]
	if !ok {
		return ErrNotFound
	}
	created := existing.CreatedAt
	cp := *c
	cp.CreatedAt = created
	r.rows[c.ID] = &cp
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

// PostgresRepository persists campaigns in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repository backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("campaigns: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, c *Campaign) (*Campaign, error) {
	stored := *c
	stored.ID = uuid.NewString()
	query := `
		INSERT INTO campaigns (id, title, description, municipality, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		stored.ID, stored.Title, stored.Description, stored.Municipality,
		stored.StartDate, stored.EndDate,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("campaigns: insert: %w", err)
	}
	return &stored, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Campaign, error) {
	query := `
		SELECT id, title, description, municipality, start_date, end_date, created_at
		FROM campaigns
		ORDER BY start_date ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("campaigns: list: %w", err)
	}
	defer rows.Close()
	return scanCampaigns(rows)
}

func (r *PostgresRepository) Upcoming(ctx context.Context, from string, limit int) ([]*Campaign, error) {
	if limit <= 0 {
		limit = 6
	}
	query := `
		SELECT id, title, description, municipality, start_date, end_date, created_at
		FROM campaigns
		WHERE start_date >= $1
		ORDER BY start_date ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("campaigns: upcoming: %w", err)
	}
	defer rows.Close()
	return scanCampaigns(rows)
}

func scanCampaigns(rows pgx.Rows) ([]*Campaign, error) {
	var out []*Campaign
	for rows.Next() {
		var c Campaign
		var start time.Time
		var end *time.Time
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Municipality, &start, &end, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("campaigns: scan row: %w", err)
		}
		c.StartDate = start.Format(dateLayout)
		if end != nil {
			c.EndDate = end.Format(dateLayout)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, c *Campaign) error {
	query := `
		UPDATE campaigns
		SET title = $2, description = $3, municipality = $4, start_date = $5, end_date = NULLIF($6, '')
		WHERE id = $1
	`
	ct, err := r.db.Exec(ctx, query, c.ID, c.Title, c.Description, c.Municipality, c.StartDate, c.EndDate)
	if err != nil {
		return fmt.Errorf("campaigns: update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("campaigns: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)

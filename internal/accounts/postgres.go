package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists accounts in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repository backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("accounts: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(q pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

const accountColumns = `id, username, email, phone, role, password_hash, created_at`

func (r *PostgresRepository) Create(ctx context.Context, acct *Account) (*Account, error) {
	stored := *acct
	stored.ID = uuid.NewString()
	query := `
		INSERT INTO users (id, username, email, phone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		stored.ID,
		stored.Username,
		stored.Email,
		stored.Phone,
		stored.Role,
		stored.PasswordHash,
	).Scan(&stored.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("accounts: insert: %w", err)
	}
	return &stored, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) getBy(ctx context.Context, query string, arg any) (*Account, error) {
	var acct Account
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&acct.ID,
		&acct.Username,
		&acct.Email,
		&acct.Phone,
		&acct.Role,
		&acct.PasswordHash,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("accounts: lookup: %w", err)
	}
	return &acct, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users ORDER BY username ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("accounts: list: %w", err)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		var acct Account
		if err := rows.Scan(
			&acct.ID,
			&acct.Username,
			&acct.Email,
			&acct.Phone,
			&acct.Role,
			&acct.PasswordHash,
			&acct.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("accounts: scan row: %w", err)
		}
		out = append(out, &acct)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id, role string) error {
	return r.updateColumn(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
}

func (r *PostgresRepository) UpdateContact(ctx context.Context, id, email, phone string) error {
	ct, err := r.db.Exec(ctx, `UPDATE users SET email = $2, phone = $3 WHERE id = $1`, id, email, phone)
	if err != nil {
		return fmt.Errorf("accounts: update contact: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.updateColumn(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("accounts: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) updateColumn(ctx context.Context, query, id string, value any) error {
	ct, err := r.db.Exec(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("accounts: update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)

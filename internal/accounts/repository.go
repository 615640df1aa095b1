package accounts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acct *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	UpdateRole(ctx context.Context, id, role string) error
	UpdateContact(ctx context.Context, id, email, phone string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a mutex-guarded Repository for tests and dev
// mode.
type InMemoryRepository struct {
	mu    sync.RWMutex
	rows  map[string]*Account
	clock func() time.Time
}

// NewInMemoryRepository creates an empty account repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows:  make(map[string]*Account),
		clock: time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, acct *Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if strings.EqualFold(existing.Username, acct.Username) {
			return nil, ErrUsernameTaken
		}
	}
	stored := *acct
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.clock().UTC()
	r.rows[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acct := range r.rows {
		if strings.EqualFold(acct.Username, username) {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acct := range r.rows {
		if acct.Email != "" && strings.EqualFold(acct.Email, email) {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Account, 0, len(r.rows))
	for _, acct := range r.rows {
		cp := *acct
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *InMemoryRepository) UpdateRole(ctx context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	acct.Role = role
	return nil
}

func (r *InMemoryRepository) UpdateContact(ctx context.Context, id, email, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	acct.Email = email
	acct.Phone = phone
	return nil
}

func (r *InMemoryRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	acct.PasswordHash = hash
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

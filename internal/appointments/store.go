package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface for appointments. It holds no
// capacity logic: pure counts and appends, read at the same consistency
// boundary the admission check uses.
type Store interface {
	// CountByDate returns the number of appointments on date (DateLayout).
	CountByDate(ctx context.Context, date string) (int, error)
	// CountsInRange returns date -> count for the inclusive range.
	// It reflects the same storage state as individual counts.
	CountsInRange(ctx context.Context, startDate, endDate string) (map[string]int, error)
	// Insert appends one appointment, assigning ID and CreatedAt.
	// Either the full row exists afterwards or nothing does.
	Insert(ctx context.Context, appt *Appointment) (*Appointment, error)
	// ListByOwner returns the owner's appointments ordered by date then
	// time-of-day ascending.
	ListByOwner(ctx context.Context, ownerID string) ([]*Appointment, error)
	// ListRecent returns the newest appointments by creation time,
	// capped at limit.
	ListRecent(ctx context.Context, limit int) ([]*Appointment, error)
	// UpdateStatus sets the status label on an existing appointment.
	UpdateStatus(ctx context.Context, id, status string) error
	// Delete removes one appointment row.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a mutex-guarded Store used by tests and dev mode.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  map[string]*Appointment
	clock func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:  make(map[string]*Appointment),
		clock: time.Now,
	}
}

// WithClock overrides the creation timestamp source for tests.
func (s *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	if clock != nil {
		s.clock = clock
	}
	return s
}

func (s *MemoryStore) CountByDate(ctx context.Context, date string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.rows {
		if a.Date == date {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountsInRange(ctx context.Context, startDate, endDate string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, a := range s.rows {
		if a.Date >= startDate && a.Date <= endDate {
			counts[a.Date]++
		}
	}
	return counts, nil
}

func (s *MemoryStore) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *appt
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.clock().UTC()
	s.rows[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string) ([]*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Appointment
	for _, a := range s.rows {
		if a.OwnerID == ownerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TimeOfDay < out[j].TimeOfDay
	})
	return out, nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Appointment, 0, len(s.rows))
	for _, a := range s.rows {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)

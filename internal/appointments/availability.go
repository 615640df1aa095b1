package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saludgo/platform/pkg/logging"
)

// Availability answers the advisory "which days are full" question. It
// reads the same counts the admission path reads but is never consulted
// by it; a stale answer can only cause a later rejection, never an
// over-admission.
type Availability struct {
	store    Store
	policy   Policy
	horizon  int
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *logging.Logger
	clock    func() time.Time
}

// NewAvailability creates the advisory query. cache may be nil, in
// which case every call hits the store.
func NewAvailability(store Store, policy Policy, horizonDays int, cache *redis.Client, logger *logging.Logger) *Availability {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Availability{
		store:    store,
		policy:   policy,
		horizon:  horizonDays,
		cache:    cache,
		cacheTTL: 15 * time.Second,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithClock overrides the time source for tests.
func (a *Availability) WithClock(clock func() time.Time) *Availability {
	if clock != nil {
		a.clock = clock
	}
	return a
}

// Horizon reports the window length in days.
func (a *Availability) Horizon() int { return a.horizon }

// DisabledDates returns the dates within [today, today+horizon] whose
// booking count has reached the daily ceiling, ascending.
func (a *Availability) DisabledDates(ctx context.Context) ([]string, error) {
	from := Today(a.clock())
	to := from.AddDate(0, 0, a.horizon)
	startDate := from.Format(DateLayout)
	endDate := to.Format(DateLayout)

	cacheKey := fmt.Sprintf("availability:disabled:%s:%s", startDate, endDate)
	if cached, ok := a.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	counts, err := a.store.CountsInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("appointments: availability window: %w", err)
	}

	disabled := make([]string, 0)
	for date, n := range counts {
		if !a.policy.Evaluate(n).Admit {
			disabled = append(disabled, date)
		}
	}
	sort.Strings(disabled)

	a.toCache(ctx, cacheKey, disabled)
	return disabled, nil
}

func (a *Availability) fromCache(ctx context.Context, key string) ([]string, bool) {
	if a.cache == nil {
		return nil, false
	}
	raw, err := a.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			a.logger.Debug("availability cache read failed", "error", err)
		}
		return nil, false
	}
	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		return nil, false
	}
	return dates, true
}

func (a *Availability) toCache(ctx context.Context, key string, dates []string) {
	if a.cache == nil {
		return
	}
	raw, err := json.Marshal(dates)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, raw, a.cacheTTL).Err(); err != nil {
		a.logger.Debug("availability cache write failed", "error", err)
	}
}

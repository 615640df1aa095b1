package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/saludgo/platform/internal/observability/metrics"
	"github.com/saludgo/platform/pkg/logging"
)

var bookingTracer = otel.Tracer("saludgo.internal.appointments")

// BookingNotifier receives confirmed appointments after the admission
// boundary is released. Implementations must tolerate at-least-once
// invocation; errors are logged by the service and never unwind the
// booking.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, appt *Appointment) error
}

// Service orchestrates admission: validation, per-date serialization,
// capacity evaluation, persistence and notification hand-off.
type Service struct {
	store    Store
	policy   Policy
	locks    *dateLocks
	lockWait time.Duration
	notifier BookingNotifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	clock    func() time.Time
}

// NewService creates the admission service.
func NewService(store Store, policy Policy, notifier BookingNotifier, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		policy:   policy,
		locks:    newDateLocks(),
		lockWait: 5 * time.Second,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithLockWait bounds the wait on the per-date boundary.
func (s *Service) WithLockWait(d time.Duration) *Service {
	if d > 0 {
		s.lockWait = d
	}
	return s
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// DailyMax exposes the configured per-day ceiling.
func (s *Service) DailyMax() int { return s.policy.DailyMax() }

// Book admits or rejects a self-service booking. The returned error is
// one of the admission sentinels or a wrapped persistence failure.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	return s.book(ctx, req, StatusScheduled)
}

// BookForAccount is the administrative creation path. It runs the
// identical admission steps; only the initial status label may differ.
func (s *Service) BookForAccount(ctx context.Context, req BookRequest, status string) (*Appointment, error) {
	if status = strings.TrimSpace(status); status == "" {
		status = StatusScheduled
	}
	return s.book(ctx, req, status)
}

func (s *Service) book(ctx context.Context, req BookRequest, status string) (*Appointment, error) {
	start := s.clock()
	ctx, span := bookingTracer.Start(ctx, "appointments.Book")
	defer span.End()

	req.normalize()
	if req.OwnerID == "" {
		return nil, s.rejected(ErrMissingOwner, start)
	}

	day, err := ParseDate(req.Date)
	if err != nil {
		return nil, s.rejected(ErrInvalidDate, start)
	}
	if day.Before(Today(s.clock())) {
		return nil, s.rejected(ErrPastDate, start)
	}
	date := day.Format(DateLayout)
	span.SetAttributes(attribute.String("booking.date", date))

	// Serialization boundary: count-then-insert is atomic per date.
	// Other dates are never blocked by this acquisition.
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	if err := s.locks.Acquire(lockCtx, date); err != nil {
		return nil, s.rejected(ErrBusy, start)
	}

	appt, err := s.admit(ctx, req, date, status)
	s.locks.Release(date)
	if err != nil {
		return nil, s.rejected(err, start)
	}

	s.metrics.ObserveAdmitted(s.clock().Sub(start).Seconds())
	s.logger.Info("appointment admitted",
		"appointment_id", appt.ID,
		"owner_id", appt.OwnerID,
		"date", appt.Date,
	)
	s.dispatchNotification(ctx, appt)
	return appt, nil
}

// admit runs inside the per-date boundary.
func (s *Service) admit(ctx context.Context, req BookRequest, date, status string) (*Appointment, error) {
	count, err := s.store.CountByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: admission count: %w", err)
	}
	if decision := s.policy.Evaluate(count); !decision.Admit {
		return nil, ErrCapacityExceeded
	}

	appt := &Appointment{
		OwnerID:   req.OwnerID,
		Date:      date,
		TimeOfDay: req.TimeOfDay,
		Category:  req.Category,
		Location:  req.Location,
		Reason:    req.Reason,
		Status:    status,
	}
	stored, err := s.store.Insert(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("appointments: admission insert: %w", err)
	}
	return stored, nil
}

// dispatchNotification hands the confirmed appointment to the notifier
// without letting transport latency reach the caller.
func (s *Service) dispatchNotification(ctx context.Context, appt *Appointment) {
	if s.notifier == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(bg, 30*time.Second)
		defer cancel()
		if err := s.notifier.BookingConfirmed(nctx, appt); err != nil {
			s.metrics.ObserveNotification("failed")
			s.logger.Error("booking notification failed",
				"error", err,
				"appointment_id", appt.ID,
			)
			return
		}
		s.metrics.ObserveNotification("dispatched")
	}()
}

func (s *Service) rejected(err error, start time.Time) error {
	code := ReasonCode(err)
	s.metrics.ObserveRejected(code, s.clock().Sub(start).Seconds())
	if code == CodePersistence {
		s.logger.Error("booking persistence failure", "error", err)
	} else {
		s.logger.Debug("booking rejected", "reason", code)
	}
	return err
}

// ListByOwner returns the owner's appointments, soonest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Appointment, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// ListRecent returns the most recently created appointments.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	return s.store.ListRecent(ctx, limit)
}

// Delete removes an appointment. Plain row removal; freed capacity
// becomes visible to the next admission naturally.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// UpdateStatus applies an administrative status transition. The status
// vocabulary is open; callers validate that the label is non-empty.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	return s.store.UpdateStatus(ctx, id, strings.TrimSpace(status))
}

package notify

import (
	"context"
	"fmt"

	"github.com/saludgo/platform/internal/accounts"
	"github.com/saludgo/platform/internal/events"
	"github.com/saludgo/platform/pkg/logging"
)

// AccountDirectory resolves booking owners to their contact details.
type AccountDirectory interface {
	GetByID(ctx context.Context, id string) (*accounts.Account, error)
}

// Service sends booking confirmations to the owner and a copy to the
// service desk. A missing owner email skips the owner message; the
// admin copy is still sent.
type Service struct {
	email      EmailSender
	directory  AccountDirectory
	adminEmail string
	logger     *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, directory AccountDirectory, adminEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:      email,
		directory:  directory,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// AppointmentBooked fans out the confirmation for a booked appointment.
func (s *Service) AppointmentBooked(ctx context.Context, evt events.AppointmentBookedV1) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping notifications")
		return nil
	}

	ownerName := "patient"
	ownerEmail := ""
	if s.directory != nil && evt.OwnerID != "" {
		acct, err := s.directory.GetByID(ctx, evt.OwnerID)
		if err != nil {
			s.logger.Warn("notify: owner lookup failed", "error", err, "owner_id", evt.OwnerID)
		} else {
			ownerName = acct.Username
			ownerEmail = acct.Email
		}
	}

	when := evt.Date
	if evt.TimeOfDay != "" {
		when = fmt.Sprintf("%s at %s", evt.Date, evt.TimeOfDay)
	}

	var errs []error

	if ownerEmail != "" {
		msg := EmailMessage{
			To:      ownerEmail,
			ToName:  ownerName,
			Subject: "Your appointment is confirmed",
			Body: fmt.Sprintf(`Hello %s,

Your %s appointment is confirmed for %s.
Location: %s

If you cannot attend, please cancel in advance so the slot can be reused.

— SaludGo`, ownerName, evt.Category, when, evt.Location),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: owner confirmation failed", "error", err, "to", ownerEmail)
			errs = append(errs, err)
		} else {
			s.logger.Info("notify: owner confirmation sent", "to", ownerEmail, "appointment_id", evt.AppointmentID)
		}
	} else {
		s.logger.Debug("notify: owner has no email on file", "owner_id", evt.OwnerID)
	}

	if s.adminEmail != "" {
		msg := EmailMessage{
			To:      s.adminEmail,
			Subject: fmt.Sprintf("New appointment: %s on %s", ownerName, evt.Date),
			Body: fmt.Sprintf(`A new appointment was booked.

Patient: %s
Category: %s
When: %s
Location: %s
Status: %s
Appointment ID: %s

— SaludGo`, ownerName, evt.Category, when, evt.Location, evt.Status, evt.AppointmentID),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: admin copy failed", "error", err, "to", s.adminEmail)
			errs = append(errs, err)
		} else {
			s.logger.Info("notify: admin copy sent", "to", s.adminEmail, "appointment_id", evt.AppointmentID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

package meds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saludgo/platform/internal/accounts"
	"github.com/saludgo/platform/internal/notify"
	"github.com/saludgo/platform/pkg/logging"
)

// AccountDirectory resolves the account a medication is assigned to so
// the owner can be emailed.
type AccountDirectory interface {
	GetByID(ctx context.Context, id string) (*accounts.Account, error)
}

// Service assigns medications and sends a best-effort email notice to
// the owner. Email failures never unwind the assignment.
type Service struct {
	repo      Repository
	email     notify.EmailSender
	directory AccountDirectory
	logger    *logging.Logger
}

// NewService creates a medication service. Email sender and directory
// are optional; without them assignment still works, silently.
func NewService(repo Repository, email notify.EmailSender, directory AccountDirectory, logger *logging.Logger) *Service {
	if repo == nil {
		panic("meds: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, email: email, directory: directory, logger: logger}
}

// Assign validates and stores a medication record, then notifies the
// owner by email when possible.
func (s *Service) Assign(ctx context.Context, m *Medication) (*Medication, error) {
	m.OwnerID = strings.TrimSpace(m.OwnerID)
	m.Name = strings.TrimSpace(m.Name)
	if m.OwnerID == "" || m.Name == "" {
		return nil, fmt.Errorf("meds: owner and medication name are required")
	}
	if m.DeliveryDate != "" {
		if _, err := time.Parse("2006-01-02", m.DeliveryDate); err != nil {
			return nil, fmt.Errorf("meds: delivery date must be YYYY-MM-DD: %w", err)
		}
	}

	stored, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, stored)
	return stored, nil
}

func (s *Service) notifyOwner(ctx context.Context, m *Medication) {
	if s.email == nil || s.directory == nil {
		return
	}
	acct, err := s.directory.GetByID(ctx, m.OwnerID)
	if err != nil || acct.Email == "" {
		s.logger.Debug("medication owner has no reachable email", "owner_id", m.OwnerID)
		return
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nA medication delivery has been scheduled for you.\n\nMedication: %s\nDose: %s\nDelivery date: %s\n\n%s\n",
		acct.Username, m.Name, m.Dose, m.DeliveryDate, m.Instructions,
	)
	msg := notify.EmailMessage{
		To:      acct.Email,
		ToName:  acct.Username,
		Subject: "SaludGo medication delivery scheduled",
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Warn("medication email notice failed", "owner_id", m.OwnerID, "error", err)
	}
}

// ListByOwner returns an account's medications, most recent delivery
// first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Medication, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListRecent returns the latest assignments across all accounts.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Medication, error) {
	return s.repo.ListRecent(ctx, limit)
}

// Delete removes a medication record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

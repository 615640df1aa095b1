package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/saludgo/platform/internal/accounts"
	"github.com/saludgo/platform/internal/events"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) messages() []EmailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EmailMessage(nil), r.sent...)
}

type mapDirectory map[string]*accounts.Account

func (m mapDirectory) GetByID(_ context.Context, id string) (*accounts.Account, error) {
	acct, ok := m[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return acct, nil
}

func bookingEvent() events.AppointmentBookedV1 {
	return events.AppointmentBookedV1{
		AppointmentID: "appt-1",
		OwnerID:       "acct-1",
		Date:          "2026-09-01",
		TimeOfDay:     "10:00",
		Category:      "Consultation",
		Location:      "to be defined",
		Status:        "Scheduled",
	}
}

func TestAppointmentBookedFansOutToOwnerAndAdmin(t *testing.T) {
	sender := &recordingSender{}
	dir := mapDirectory{"acct-1": {ID: "acct-1", Username: "maria", Email: "maria@example.com"}}
	svc := NewService(sender, dir, "desk@example.com", nil)

	if err := svc.AppointmentBooked(context.Background(), bookingEvent()); err != nil {
		t.Fatalf("AppointmentBooked: %v", err)
	}

	msgs := sender.messages()
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(msgs))
	}
	if msgs[0].To != "maria@example.com" {
		t.Fatalf("owner message went to %q", msgs[0].To)
	}
	if !strings.Contains(msgs[0].Body, "2026-09-01 at 10:00") {
		t.Fatalf("owner body missing schedule: %q", msgs[0].Body)
	}
	if msgs[1].To != "desk@example.com" {
		t.Fatalf("admin copy went to %q", msgs[1].To)
	}
	if !strings.Contains(msgs[1].Body, "appt-1") {
		t.Fatalf("admin body missing appointment id: %q", msgs[1].Body)
	}
}

func TestAppointmentBookedSkipsOwnerWithoutEmail(t *testing.T) {
	sender := &recordingSender{}
	dir := mapDirectory{"acct-1": {ID: "acct-1", Username: "maria"}}
	svc := NewService(sender, dir, "desk@example.com", nil)

	if err := svc.AppointmentBooked(context.Background(), bookingEvent()); err != nil {
		t.Fatalf("AppointmentBooked: %v", err)
	}
	msgs := sender.messages()
	if len(msgs) != 1 || msgs[0].To != "desk@example.com" {
		t.Fatalf("messages = %v, want the admin copy only", msgs)
	}
}

func TestAppointmentBookedOwnerLookupFailure(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, mapDirectory{}, "desk@example.com", nil)

	if err := svc.AppointmentBooked(context.Background(), bookingEvent()); err != nil {
		t.Fatalf("AppointmentBooked: %v", err)
	}
	if msgs := sender.messages(); len(msgs) != 1 || msgs[0].To != "desk@example.com" {
		t.Fatalf("messages = %v, want the admin copy only", msgs)
	}
}

func TestAppointmentBookedCollectsSendFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	dir := mapDirectory{"acct-1": {ID: "acct-1", Username: "maria", Email: "maria@example.com"}}
	svc := NewService(sender, dir, "desk@example.com", nil)

	err := svc.AppointmentBooked(context.Background(), bookingEvent())
	if err == nil {
		t.Fatal("expected an error when every send fails")
	}
	if !strings.Contains(err.Error(), "2 notification(s) failed") {
		t.Fatalf("error = %v", err)
	}
}

func TestAppointmentBookedNoSenderConfigured(t *testing.T) {
	svc := NewService(nil, nil, "desk@example.com", nil)
	if err := svc.AppointmentBooked(context.Background(), bookingEvent()); err != nil {
		t.Fatalf("AppointmentBooked without a sender: %v", err)
	}
}

package notify

import (
	"context"
	"time"

	"github.com/saludgo/platform/internal/appointments"
	"github.com/saludgo/platform/internal/events"
)

// BookingEnqueuer receives confirmed appointments from the admission
// service and records them for delivery. With an outbox configured the
// event survives process restarts; otherwise it is published straight
// to the queue.
type BookingEnqueuer struct {
	outbox    *events.OutboxStore
	publisher *Publisher
	clock     func() time.Time
}

// NewBookingEnqueuer creates the enqueuer. Either the outbox or the
// publisher may be nil but not both.
func NewBookingEnqueuer(outbox *events.OutboxStore, publisher *Publisher) *BookingEnqueuer {
	if outbox == nil && publisher == nil {
		panic("notify: enqueuer needs an outbox or a publisher")
	}
	return &BookingEnqueuer{outbox: outbox, publisher: publisher, clock: time.Now}
}

// BookingConfirmed records the confirmation event for delivery.
func (e *BookingEnqueuer) BookingConfirmed(ctx context.Context, appt *appointments.Appointment) error {
	evt := events.AppointmentBookedV1{
		AppointmentID: appt.ID,
		OwnerID:       appt.OwnerID,
		Date:          appt.Date,
		TimeOfDay:     appt.TimeOfDay,
		Category:      appt.Category,
		Location:      appt.Location,
		Status:        appt.Status,
		OccurredAt:    e.clock().UTC(),
	}
	if e.outbox != nil {
		_, err := e.outbox.Insert(ctx, events.TypeAppointmentBooked, evt)
		return err
	}
	return e.publisher.PublishBooking(ctx, evt)
}

var _ appointments.BookingNotifier = (*BookingEnqueuer)(nil)

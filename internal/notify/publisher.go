package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saludgo/platform/internal/events"
	"github.com/saludgo/platform/pkg/logging"
)

// Publisher pushes booking events onto the notification queue. It also
// implements events.DeliveryHandler so the outbox deliverer can drain
// straight into the queue.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a publisher over the given queue.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// PublishBooking enqueues a booking confirmation job.
func (p *Publisher) PublishBooking(ctx context.Context, evt events.AppointmentBookedV1) error {
	body, err := encodePayload(queuePayload{Kind: jobKindBooking, Booking: &evt})
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("notify: publish booking: %w", err)
	}
	return nil
}

// Handle converts an outbox entry into a queue job. Unknown event
// types are acknowledged without work so they do not clog the outbox.
func (p *Publisher) Handle(ctx context.Context, entry events.OutboxEntry) error {
	switch entry.Type {
	case events.TypeAppointmentBooked:
		var evt events.AppointmentBookedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode outbox payload: %w", err)
		}
		return p.PublishBooking(ctx, evt)
	default:
		p.logger.Warn("notify: skipping unknown outbox event", "type", entry.Type, "event_id", entry.ID)
		return nil
	}
}

var _ events.DeliveryHandler = (*Publisher)(nil)

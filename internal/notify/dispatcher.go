package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/saludgo/platform/pkg/logging"
)

// Dispatcher consumes the notification queue with a small worker pool
// and hands each job to the Service.
type Dispatcher struct {
	queue       queueClient
	svc         *Service
	logger      *logging.Logger
	workers     int
	maxMessages int
	waitSeconds int
}

// NewDispatcher creates a dispatcher over the queue.
func NewDispatcher(queue queueClient, svc *Service, logger *logging.Logger) *Dispatcher {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if svc == nil {
		panic("notify: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		queue:       queue,
		svc:         svc,
		logger:      logger,
		workers:     2,
		maxMessages: 5,
		waitSeconds: 10,
	}
}

// WithWorkers sets the pool size.
func (d *Dispatcher) WithWorkers(n int) *Dispatcher {
	if n > 0 {
		d.workers = n
	}
	return d
}

// Start runs the worker pool until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			d.run(ctx, worker)
		}(i)
	}
	wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, worker int) {
	for {
		msgs, err := d.queue.Receive(ctx, d.maxMessages, d.waitSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Error("notification receive failed", "error", err, "worker", worker)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		for _, msg := range msgs {
			d.handle(ctx, msg)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		d.logger.Error("notification payload undecodable, dropping", "error", err, "message_id", msg.ID)
		// Undecodable messages would loop forever; acknowledge them.
		d.ack(ctx, msg)
		return
	}

	switch payload.Kind {
	case jobKindBooking:
		if payload.Booking == nil {
			d.logger.Error("booking job without payload, dropping", "message_id", msg.ID)
			d.ack(ctx, msg)
			return
		}
		if err := d.svc.AppointmentBooked(ctx, *payload.Booking); err != nil {
			// Leave the message for redelivery.
			d.logger.Error("booking notification failed", "error", err, "appointment_id", payload.Booking.AppointmentID)
			return
		}
	default:
		d.logger.Warn("unknown notification job, dropping", "kind", payload.Kind, "message_id", msg.ID)
	}
	d.ack(ctx, msg)
}

func (d *Dispatcher) ack(ctx context.Context, msg queueMessage) {
	if err := d.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		d.logger.Error("failed to delete queue message", "error", err, "message_id", msg.ID)
	}
}

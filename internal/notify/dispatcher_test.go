package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saludgo/platform/internal/appointments"
	"github.com/saludgo/platform/internal/events"
)

func TestPublisherHandleOutboxEntry(t *testing.T) {
	queue := NewMemoryQueue(4)
	pub := NewPublisher(queue, nil)

	payload, err := json.Marshal(bookingEvent())
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	entry := events.OutboxEntry{ID: uuid.New(), Type: events.TypeAppointmentBooked, Payload: payload}
	if err := pub.Handle(context.Background(), entry); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msgs, err := queue.Receive(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("received %d messages, want 1", len(msgs))
	}
	var job queuePayload
	if err := json.Unmarshal([]byte(msgs[0].Body), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Kind != jobKindBooking || job.Booking == nil || job.Booking.AppointmentID != "appt-1" {
		t.Fatalf("job = %+v", job)
	}
}

func TestPublisherHandleUnknownTypeIsAcknowledged(t *testing.T) {
	queue := NewMemoryQueue(1)
	pub := NewPublisher(queue, nil)

	entry := events.OutboxEntry{ID: uuid.New(), Type: "unrelated.v1", Payload: []byte(`{}`)}
	if err := pub.Handle(context.Background(), entry); err != nil {
		t.Fatalf("Handle unknown type: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if msgs, _ := queue.Receive(ctx, 1, 0); len(msgs) != 0 {
		t.Fatalf("unknown event reached the queue: %v", msgs)
	}
}

func TestEnqueuerPublishesDirectlyWithoutOutbox(t *testing.T) {
	queue := NewMemoryQueue(4)
	enq := NewBookingEnqueuer(nil, NewPublisher(queue, nil))

	appt := &appointments.Appointment{
		ID:       "appt-7",
		OwnerID:  "acct-1",
		Date:     "2026-09-02",
		Category: "Consultation",
		Status:   "Scheduled",
	}
	if err := enq.BookingConfirmed(context.Background(), appt); err != nil {
		t.Fatalf("BookingConfirmed: %v", err)
	}

	msgs, err := queue.Receive(context.Background(), 1, 1)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("Receive = %v, %v", msgs, err)
	}
	var job queuePayload
	if err := json.Unmarshal([]byte(msgs[0].Body), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Booking == nil || job.Booking.AppointmentID != "appt-7" {
		t.Fatalf("job = %+v", job)
	}
	if job.Booking.OccurredAt.IsZero() {
		t.Fatal("event has no occurrence time")
	}
}

func TestDispatcherDeliversBookingJobs(t *testing.T) {
	queue := NewMemoryQueue(4)
	sender := &recordingSender{}
	dir := mapDirectory{"acct-1": {ID: "acct-1", Username: "maria", Email: "maria@example.com"}}
	svc := NewService(sender, dir, "desk@example.com", nil)
	dispatcher := NewDispatcher(queue, svc, nil).WithWorkers(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		dispatcher.Start(ctx)
		close(done)
	}()

	if err := NewPublisher(queue, nil).PublishBooking(ctx, bookingEvent()); err != nil {
		t.Fatalf("PublishBooking: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if len(sender.messages()) == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("dispatcher delivered %d messages, want 2", len(sender.messages()))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop on cancellation")
	}
}

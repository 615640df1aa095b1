package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/saludgo/platform/internal/events"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobKind string

const jobKindBooking jobKind = events.TypeAppointmentBooked

type queuePayload struct {
	ID      string                      `json:"id"`
	Kind    jobKind                     `json:"kind"`
	Booking *events.AppointmentBookedV1 `json:"booking,omitempty"`
}

func encodePayload(payload queuePayload) (string, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("notify: failed to encode payload: %w", err)
	}
	return string(body), nil
}

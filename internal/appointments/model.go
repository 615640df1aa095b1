// Package appointments implements the appointment admission subsystem:
// a per-day capacity cap enforced across concurrent booking requests,
// plus the availability view derived from the same counts.
package appointments

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Appointment statuses. Scheduled is the only status the system assigns
// on its own; administrators may set any free-form label, so Status is
// an open string with these well-known values.
const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusNoShow    = "NoShow"
)

const (
	// DefaultCategory is used when a booking omits the appointment type.
	DefaultCategory = "Consultation"
	// DefaultLocation is used when a booking omits the place.
	DefaultLocation = "to be defined"
)

// Appointment is one booked slot on a calendar date.
type Appointment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Date      string    `json:"date"` // DateLayout
	TimeOfDay string    `json:"time_of_day,omitempty"`
	Category  string    `json:"category"`
	Location  string    `json:"location"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// BookRequest carries a booking intent into the admission service.
type BookRequest struct {
	OwnerID   string `json:"-"`
	Date      string `json:"date"`
	TimeOfDay string `json:"time_of_day"`
	Category  string `json:"category"`
	Location  string `json:"location"`
	Reason    string `json:"reason"`
}

// normalize trims inputs and applies the category/location defaults.
func (r *BookRequest) normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.TimeOfDay = strings.TrimSpace(r.TimeOfDay)
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Category = strings.TrimSpace(r.Category); r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.Location = strings.TrimSpace(r.Location); r.Location == "" {
		r.Location = DefaultLocation
	}
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// Today returns the current calendar date truncated to midnight local time.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

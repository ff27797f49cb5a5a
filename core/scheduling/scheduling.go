// Package scheduling defines the workflow provider boundaries for technician
// availability lookup and meeting creation.
package scheduling

import (
	"context"
	"errors"
	"time"
)

// ErrNoSlot is returned when no open slot exists inside the search horizon.
var ErrNoSlot = errors.New("no available slot in search horizon")

// Window is a proposed meeting time span.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two windows share any time.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Slot is an availability proposal with caller-facing display fields.
type Slot struct {
	Window Window
	Day    string // e.g. "Monday"
	Date   string // e.g. "March 03, 2025"
	Time   string // e.g. "9:00 AM UTC"
}

// AvailabilityProvider finds the next open technician slot.
type AvailabilityProvider interface {
	NextAvailableSlot(ctx context.Context) (*Slot, error)
}

// BookingRequest carries everything needed to finalise a meeting.
type BookingRequest struct {
	Subject string
	Start   time.Time
	End     time.Time
	Email   string
}

// Confirmation is the provider's proof of a created meeting.
type Confirmation struct {
	Reference string
	JoinURL   string
}

// BookingProvider creates the meeting. A provider is invoked at most once per
// assembled action; retry policy belongs to the provider, not the caller.
type BookingProvider interface {
	CreateMeeting(ctx context.Context, request BookingRequest) (*Confirmation, error)
}

package analytics

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type Kind string

const (
	HoldCreated   Kind = "hold_created"
	HoldConverted Kind = "hold_converted"
	HoldExpired   Kind = "hold_expired"
)

type Event struct {
	Kind      Kind
	HoldID    string
	SessionID string
	StaffID   uint
	ServiceID uint
	At        time.Time
}

func newEvent(kind Kind, h models.BookingHold, at time.Time) Event {
	return Event{
		Kind:      kind,
		HoldID:    h.ID,
		SessionID: h.SessionID,
		StaffID:   h.StaffID,
		ServiceID: h.ServiceID,
		At:        at.UTC(),
	}
}

// Sink receives hold lifecycle events. Implementations must never block or
// fail the caller.
type Sink interface {
	RecordHoldCreated(h models.BookingHold, at time.Time)
	RecordHoldConverted(h models.BookingHold, at time.Time)
	RecordHoldExpired(h models.BookingHold, at time.Time)
}

type Nop struct{}

func (Nop) RecordHoldCreated(models.BookingHold, time.Time)   {}
func (Nop) RecordHoldConverted(models.BookingHold, time.Time) {}
func (Nop) RecordHoldExpired(models.BookingHold, time.Time)   {}

package booking

import "github.com/BruksfildServices01/salon-booking/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusConfirmed, StatusPending, StatusCancelled, StatusNoShow:
		return Status(s), true
	}
	return "", false
}

// Occupies reports whether a booking in this status holds its slot.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

// ===============================
// Transitions
// ===============================

func CanCancel(current Status) error {
	if current != StatusConfirmed && current != StatusPending {
		return httperr.ErrValidation("invalid_state", "only confirmed or pending bookings can be cancelled")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrValidation("invalid_state", "only confirmed bookings can be marked no-show")
	}
	return nil
}

func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrValidation("invalid_state", "only pending bookings can be confirmed")
	}
	return nil
}

func InitialStatus() Status {
	return StatusConfirmed
}

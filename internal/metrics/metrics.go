package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salon_booking"

var (
	once sync.Once

	holdEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_events_total",
			Help:      "Hold lifecycle transitions by outcome.",
		},
		[]string{"event"},
	)

	holdConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_conflicts_total",
			Help:      "Hold requests rejected because the slot was taken.",
		},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Bookings committed by source.",
		},
		[]string{"source"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Bookings rejected by the commit-time overlap check.",
		},
	)

	analyticsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_dropped_total",
			Help:      "Hold analytics events dropped because the queue was full.",
		},
	)
)

const (
	HoldCreated   = "created"
	HoldConverted = "converted"
	HoldExpired   = "expired"
	HoldReleased  = "released"

	SourceDirect = "direct"
	SourceHold   = "hold"
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			holdEvents,
			holdConflicts,
			bookingCreated,
			bookingConflicts,
			analyticsDropped,
		)
	})
}

func IncHoldEvent(event string) {
	holdEvents.WithLabelValues(event).Inc()
}

func AddHoldEvents(event string, n int) {
	holdEvents.WithLabelValues(event).Add(float64(n))
}

func IncHoldConflict() {
	holdConflicts.Inc()
}

func IncBookingCreated(source string) {
	bookingCreated.WithLabelValues(source).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncAnalyticsDropped() {
	analyticsDropped.Inc()
}

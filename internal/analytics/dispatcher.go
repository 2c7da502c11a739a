package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const defaultQueueSize = 100

// Dispatcher hands events to a single background worker so writes keep
// their order. When the queue is full events are dropped.
type Dispatcher struct {
	writer Writer
	queue  chan Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(writer Writer, size int) *Dispatcher {
	if size <= 0 {
		size = defaultQueueSize
	}

	d := &Dispatcher{
		writer: writer,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.writer.Log(ctx, ev); err != nil {
			logrus.WithError(err).
				WithFields(logrus.Fields{
					"event":   ev.Kind,
					"hold_id": ev.HoldID,
				}).
				Error("analytics write failed")
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		metrics.IncAnalyticsDropped()
		logrus.WithFields(logrus.Fields{
			"event":   ev.Kind,
			"hold_id": ev.HoldID,
		}).Warn("analytics queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) RecordHoldCreated(h models.BookingHold, at time.Time) {
	d.Dispatch(newEvent(HoldCreated, h, at))
}

func (d *Dispatcher) RecordHoldConverted(h models.BookingHold, at time.Time) {
	d.Dispatch(newEvent(HoldConverted, h, at))
}

func (d *Dispatcher) RecordHoldExpired(h models.BookingHold, at time.Time) {
	d.Dispatch(newEvent(HoldExpired, h, at))
}

var _ Sink = (*Dispatcher)(nil)

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	queueSize    = 100
	writeTimeout = 5 * time.Second
)

type Event struct {
	ID         string
	Action     string
	Entity     string
	EntityID   *uint
	Metadata   any
	OccurredAt time.Time
}

// Sink receives every dispatched event. Sinks are called from a single
// worker goroutine, in dispatch order.
type Sink interface {
	Name() string
	Write(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	log   *zap.Logger
	sinks []Sink
	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(log *zap.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		log:   log,
		sinks: sinks,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			if err := s.Write(ctx, ev); err != nil {
				d.log.Warn("audit sink failed",
					zap.String("sink", s.Name()),
					zap.String("event_id", ev.ID),
					zap.String("action", ev.Action),
					zap.Error(err),
				)
			}
			cancel()
		}
	}
}

// Dispatch never blocks the request path: when the queue is full the
// event is dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event",
			zap.String("event_id", ev.ID),
			zap.String("action", ev.Action),
		)
	}
}

// Close stops accepting events and waits until queued ones reach the
// sinks or ctx expires. Dispatch must not be called after Close.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() { close(d.queue) })

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

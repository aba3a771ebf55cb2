// Package events defines how domain events leave the service.
package events

import (
	"context"
	"sync"
	"time"

	"tableorder/models"
)

// Publisher sends events to a broker. Implementations must be safe for
// concurrent use by request handlers.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
	Close() error
}

// DelayedPublisher can schedule an event for later delivery.
type DelayedPublisher interface {
	PublishDelayed(ctx context.Context, event models.Event, delay time.Duration) error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, models.Event) error { return nil }
func (Noop) Close() error                                { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu      sync.Mutex
	Events  []models.Event
	Delayed []models.Event
}

func (r *Recorder) Publish(_ context.Context, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) PublishDelayed(_ context.Context, event models.Event, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Delayed = append(r.Delayed, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

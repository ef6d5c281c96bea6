// Package events carries typed domain events from the engines to downstream
// consumers. Events are enqueued while a unit of work is in flight and handed
// to the Publisher only after the transaction commits, so consumers never see
// an event for a rolled-back change.
package events

import (
	"context"
	"sync"

	"github.com/sahakari/coopcore/internal/core/domain"
)

// Publisher delivers committed domain events to the outside world (message
// broker, log). Delivery is best-effort; a failed publish is logged by the
// caller and never rolls back the originating operation.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Recorder accumulates events raised inside a unit of work.
type Recorder struct {
	mu      sync.Mutex
	pending []domain.Event
}

// Add appends an event to the pending set.
func (r *Recorder) Add(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, event)
}

// Drain returns and clears the pending events in enqueue order.
func (r *Recorder) Drain() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	drained := r.pending
	r.pending = nil
	return drained
}

type recorderKey struct{}

// WithRecorder attaches a fresh Recorder to the context, or returns the
// existing one so nested units of work share a single pending set.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	if rec := RecorderFromContext(ctx); rec != nil {
		return ctx, rec
	}
	rec := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

// RecorderFromContext retrieves the ambient Recorder, or nil.
func RecorderFromContext(ctx context.Context) *Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}

// Enqueue adds an event to the ambient recorder. It reports false when no
// unit of work is in flight, in which case the caller should publish
// directly.
func Enqueue(ctx context.Context, event domain.Event) bool {
	rec := RecorderFromContext(ctx)
	if rec == nil {
		return false
	}
	rec.Add(event)
	return true
}

package audit

import (
	"context"
	"log/slog"
)

// Sink fans an event out beyond the local store (e.g. the Kafka topic).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes audit events from the inbox and persists them, fanning
// out to the sink when one is configured. Sink failures are logged, not
// retried; the local store remains the queryable copy.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append audit event", "error", err, "action", event.Action)
				continue
			}
			if w.sink == nil {
				continue
			}
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "publish audit event", "error", err, "action", event.Action)
			}
		}
	}
}

package worker

import (
	"context"
	"log/slog"

	audit "chronoledger/pkg/platform/audit"
)

// HandleFunc processes one event.
type HandleFunc func(ctx context.Context, event audit.Event) error

// Worker consumes audit events from a channel and hands them to a HandleFunc.
// Handler errors are logged and do not stop the worker.
type Worker struct {
	inbox  <-chan audit.Event
	handle HandleFunc
	logger *slog.Logger
}

func NewWorker(inbox <-chan audit.Event, handle HandleFunc, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, handle: handle, logger: logger}
}

// Run processes events until the inbox is closed (returns nil) or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, event); err != nil && w.logger != nil {
				w.logger.ErrorContext(ctx, "audit event dropped",
					"action", event.Action,
					"record_id", event.RecordID,
					"error", err,
				)
			}
		}
	}
}

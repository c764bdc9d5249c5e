package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "chronoledger/pkg/platform/audit"
)

func TestWorkerDrainsUntilClosed(t *testing.T) {
	inbox := make(chan audit.Event, 3)
	var handled []string
	w := NewWorker(inbox, func(_ context.Context, e audit.Event) error {
		handled = append(handled, e.Action)
		if e.Action == "fail" {
			return errors.New("sink down")
		}
		return nil
	}, nil)

	inbox <- audit.Event{Action: "one"}
	inbox <- audit.Event{Action: "fail"}
	inbox <- audit.Event{Action: "two"}
	close(inbox)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []string{"one", "fail", "two"}, handled, "handler errors must not stop the worker")
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	inbox := make(chan audit.Event)
	w := NewWorker(inbox, func(context.Context, audit.Event) error { return nil }, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Run(ctx), context.DeadlineExceeded)
}

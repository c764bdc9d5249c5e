// Package allocator issues record identifiers for the ledger.
//
// Every backend returns strictly increasing identifiers starting at 1. A single
// Allocator is shared by the timeline, anomaly and resolution registries so
// identifiers are unique across all record kinds. An identifier consumed by an
// operation that later fails is never reused.
package allocator

import (
	"context"
	"sync"
)

// Allocator issues the next identifier.
type Allocator interface {
	Next(ctx context.Context) (uint64, error)
}

// Counter is an in-process Allocator guarded by a mutex. Its lifecycle is bound
// to the process; identifiers restart at 1 on every boot.
type Counter struct {
	mu   sync.Mutex
	last uint64
}

// NewCounter returns a Counter whose first identifier is 1.
func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Next(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last, nil
}

// Last returns the most recently issued identifier, or 0 if none.
func (c *Counter) Last() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

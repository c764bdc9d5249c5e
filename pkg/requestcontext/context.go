// Package requestcontext carries the per-request ledger values (caller,
// request id, request clock) through context.Context. Middleware writes them
// and services read them, so services never import net/http.
//
// Tests that skip the middleware chain inject values directly:
//
//	ctx = requestcontext.WithPrincipal(ctx, "alice")
//	ctx = requestcontext.WithTime(ctx, fixed)
package requestcontext

import (
	"context"
	"time"

	id "chronoledger/pkg/domain"
)

type key int

const (
	principalKey key = iota
	requestIDKey
	requestTimeKey
)

func lookup[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// Principal is the acting caller, or the empty principal for anonymous
// requests.
func Principal(ctx context.Context) id.Principal {
	p, _ := lookup[id.Principal](ctx, principalKey)
	return p
}

func WithPrincipal(ctx context.Context, p id.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func RequestID(ctx context.Context) string {
	reqID, _ := lookup[string](ctx, requestIDKey)
	return reqID
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the time stamped on the request by middleware. Outside a request it
// is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := HasTime(ctx); ok {
		return t
	}
	return time.Now()
}

// HasTime reports the stamped request time, if any.
func HasTime(ctx context.Context) (time.Time, bool) {
	return lookup[time.Time](ctx, requestTimeKey)
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}

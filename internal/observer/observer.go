// Package observer delivers progress snapshots from a search loop to a set
// of independent observers.
//
// An Observable owns the ordered observer list and delivers every snapshot
// synchronously, in registration order, on the caller's goroutine. Each
// observer decides on its own whether to react (throttling) and performs its
// side effect: drawing a progress bar, logging a summary line, writing the
// current front to disk, streaming a live plot, and so on.
//
// A failing observer never prevents delivery to the observers after it and
// never crashes the search loop: returned errors and panics are captured at
// the dispatch boundary and reported as diagnostics.
package observer

import (
	"context"
	"fmt"
)

// Observer reacts to snapshots of a running search.
//
// Update is called synchronously from Observable.Notify. Implementations
// must treat the snapshot as read-only and must copy any part of it they
// keep beyond the call.
type Observer interface {
	Update(ctx context.Context, s Snapshot) error
}

// Named is implemented by observers that want a stable name in logs and
// metrics.
type Named interface {
	Name() string
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, s Snapshot) error

// Update implements Observer.
func (f ObserverFunc) Update(ctx context.Context, s Snapshot) error {
	return f(ctx, s)
}

// nameOf returns the diagnostic name of obs.
func nameOf(obs Observer) string {
	if n, ok := obs.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", obs)
}

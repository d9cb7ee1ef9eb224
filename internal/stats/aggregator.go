// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stats mirrors the server-computed reports snapshot.
//
// The snapshot is derived, read-only data: it is replaced wholesale on
// each refresh, never patched incrementally. Views that mutate counted
// entities hold a reference to the one shared Aggregator and request a
// recount through it; there is no ambient global to reach for.
package stats

import (
	"context"
	"sync"

	"github.com/webitof/crmdash/internal/model"
)

// Fetcher fetches the overview snapshot from the backend. Satisfied by
// (*api.Client).Overview.
type Fetcher func(ctx context.Context) (model.Overview, error)

// Aggregator holds the current snapshot and refreshes it on demand.
type Aggregator struct {
	mu    sync.Mutex
	fetch Fetcher

	snapshot model.Overview
	fetched  bool
	err      error

	inflight  chan struct{}
	flightErr error

	subscribers []func(model.Overview)
}

// New creates an Aggregator over the given fetch function.
func New(fetch Fetcher) *Aggregator {
	return &Aggregator{fetch: fetch}
}

// Snapshot returns the current snapshot. Before the first successful
// refresh this is the zero value: all counters read zero.
func (a *Aggregator) Snapshot() model.Overview {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// Fetched reports whether at least one refresh has succeeded.
func (a *Aggregator) Fetched() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetched
}

// Err returns the last refresh error, nil when healthy.
func (a *Aggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Subscribe registers a callback invoked with each new snapshot. The
// callback runs outside the aggregator lock.
func (a *Aggregator) Subscribe(fn func(model.Overview)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// Refresh fetches the snapshot and replaces it wholesale on success.
// Concurrent refreshes coalesce onto the in-flight fetch and share its
// outcome. On failure the previous snapshot is kept.
func (a *Aggregator) Refresh(ctx context.Context) (model.Overview, error) {
	a.mu.Lock()
	if a.inflight != nil {
		done := a.inflight
		a.mu.Unlock()
		select {
		case <-done:
			a.mu.Lock()
			snap, err := a.snapshot, a.flightErr
			a.mu.Unlock()
			return snap, err
		case <-ctx.Done():
			return model.Overview{}, ctx.Err()
		}
	}
	done := make(chan struct{})
	a.inflight = done
	a.mu.Unlock()

	snap, err := a.fetch(ctx)

	a.mu.Lock()
	a.inflight = nil
	a.flightErr = err
	var subs []func(model.Overview)
	if err != nil {
		a.err = err
		snap = a.snapshot
	} else {
		a.snapshot = snap
		a.fetched = true
		a.err = nil
		subs = append(subs, a.subscribers...)
	}
	a.mu.Unlock()
	close(done)

	for _, fn := range subs {
		fn(snap)
	}
	return snap, err
}

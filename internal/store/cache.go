// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store keeps the per-entity-type in-memory collections
// synchronized with the backend.
//
// Each cache instance is shared by reference across every view that
// needs that entity type: there is one collection of leads in the
// process, not one per screen. The contract is confirmed-state-only.
// No operation ever touches the in-memory rows before the backend has
// acknowledged the mutation, so a failure always leaves the previous
// rows intact.
package store

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/webitof/crmdash/internal/api"
)

// State is the lifecycle state of a cache.
type State int

const (
	// StateEmpty means no fetch has been attempted yet.
	StateEmpty State = iota
	// StateLoading means a fetch is in flight.
	StateLoading
	// StateReady means the rows mirror the last confirmed server state.
	StateReady
	// StateError means the last fetch failed. Rows from a previous
	// successful fetch, if any, are preserved rather than discarded.
	StateError
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Entity is any record type with a server-assigned identifier.
type Entity interface {
	EntityID() string
}

// Ops binds a cache to the backend operations for one entity type.
// Mutator funcs may be nil for read-only collections (e.g. the staff
// picker); calling the corresponding cache method then fails with
// ErrReadOnly.
type Ops[T Entity, D any] struct {
	List   func(ctx context.Context) ([]T, error)
	Create func(ctx context.Context, draft D) (T, error)
	Update func(ctx context.Context, id string, draft D) (T, error)
	Delete func(ctx context.Context, id string) error
}

// ErrReadOnly is returned when a mutator is called on a cache bound
// without that operation.
var ErrReadOnly = errors.New("cache is read-only")

// Mutation describes one confirmed backend mutation, delivered to the
// mutation hook so interested parties (stats refresh, activity log)
// can react without the cache holding references to them.
type Mutation struct {
	Kind string // entity kind, e.g. "lead"
	Verb string // "create", "update", "delete", "convert"
	ID   string // server-assigned identifier of the affected record
}

// Cache is a lazily fetched, mutation-aware mirror of one entity
// collection. Insertion order equals server response order.
type Cache[T Entity, D any] struct {
	mu   sync.Mutex
	kind string
	ops  Ops[T, D]

	state State
	rows  []T
	err   error

	// seq numbers fetches so a response that resolves after the cache
	// was reset is discarded instead of resurrecting stale rows.
	seq      uint64
	inflight chan struct{}
	// flightErr is the outcome of the last completed flight, reported
	// to refreshers that coalesced onto it.
	flightErr error

	onMutation func(Mutation)
}

// NewCache creates a cache for one entity kind bound to its backend ops.
func NewCache[T Entity, D any](kind string, ops Ops[T, D]) *Cache[T, D] {
	return &Cache[T, D]{kind: kind, ops: ops}
}

// SetMutationHook installs the callback invoked after every confirmed
// mutation. Pass nil to remove it.
func (c *Cache[T, D]) SetMutationHook(fn func(Mutation)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMutation = fn
}

// =============================================================================
// READS
// =============================================================================

// State returns the current lifecycle state.
func (c *Cache[T, D]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last fetch error, nil when the cache is healthy.
func (c *Cache[T, D]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Rows returns a copy of the current collection in server order.
func (c *Cache[T, D]) Rows() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of cached rows.
func (c *Cache[T, D]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Get returns the cached row with the given identifier.
func (c *Cache[T, D]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range c.rows {
		if row.EntityID() == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// =============================================================================
// REFRESH (single-flight)
// =============================================================================

// Refresh fetches the collection and replaces the rows on success. At
// most one fetch is in flight per cache: a Refresh arriving while one
// is running waits for that flight and returns its outcome instead of
// issuing a second request. On failure previous rows are preserved and
// the cache moves to StateError.
func (c *Cache[T, D]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateLoading {
		done := c.inflight
		c.mu.Unlock()
		select {
		case <-done:
			c.mu.Lock()
			err := c.flightErr
			c.mu.Unlock()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.seq++
	seq := c.seq
	c.state = StateLoading
	done := make(chan struct{})
	c.inflight = done
	c.mu.Unlock()

	rows, err := c.ops.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(done)
	c.flightErr = err

	if seq != c.seq {
		// The cache was reset while this flight was in the air; its
		// response no longer describes anything we want to keep.
		log.Printf("store: %s: discarding stale fetch (seq %d != %d)", c.kind, seq, c.seq)
		return err
	}

	if err != nil {
		c.state = StateError
		c.err = err
		return err
	}

	c.rows = rows
	c.state = StateReady
	c.err = nil
	return nil
}

// Reset drops all rows and returns the cache to StateEmpty, e.g. on
// logout. A fetch currently in flight is invalidated: its late
// response will be discarded.
func (c *Cache[T, D]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = StateEmpty
	c.rows = nil
	c.err = nil
}

// =============================================================================
// MUTATORS (confirmed-state-only)
// =============================================================================

// Create sends the draft to the backend and, only on success, appends
// the server's returned record. On failure the rows are unchanged and
// the error propagates for user-visible reporting.
func (c *Cache[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var zero T
	if c.ops.Create == nil {
		return zero, ErrReadOnly
	}

	c.mu.Lock()
	seq := c.seq
	c.mu.Unlock()

	created, err := c.ops.Create(ctx, draft)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	if seq != c.seq {
		// The cache was reset while the request was in the air; do not
		// land the confirmed row in the emptied collection.
		c.mu.Unlock()
		log.Printf("store: %s: discarding stale create of %s", c.kind, created.EntityID())
		return created, nil
	}
	c.rows = append(c.rows, created)
	c.mu.Unlock()

	c.notify(Mutation{Kind: c.kind, Verb: "create", ID: created.EntityID()})
	return created, nil
}

// Update sends the draft to the backend and, only on success, replaces
// the matching row with the server's returned record. If no row
// matches (the record vanished between fetch and edit) the returned
// record is discarded and the next Refresh reconciles; it is never
// inserted.
func (c *Cache[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	var zero T
	if c.ops.Update == nil {
		return zero, ErrReadOnly
	}

	c.mu.Lock()
	seq := c.seq
	c.mu.Unlock()

	updated, err := c.ops.Update(ctx, id, draft)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Printf("store: %s: discarding stale update of %s", c.kind, id)
		return updated, nil
	}
	replaced := false
	for i, row := range c.rows {
		if row.EntityID() == id {
			c.rows[i] = updated
			replaced = true
			break
		}
	}
	c.mu.Unlock()

	if !replaced {
		log.Printf("store: %s: updated %s not in cache; awaiting refresh", c.kind, id)
	}

	c.notify(Mutation{Kind: c.kind, Verb: "update", ID: id})
	return updated, nil
}

// Delete removes the record on the backend and, only on success,
// removes the matching row. A NotFound answer means another actor got
// there first: the row is reconciled away locally and the error is
// still returned so the caller can report "already gone".
func (c *Cache[T, D]) Delete(ctx context.Context, id string) error {
	if c.ops.Delete == nil {
		return ErrReadOnly
	}

	c.mu.Lock()
	seq := c.seq
	c.mu.Unlock()

	err := c.ops.Delete(ctx, id)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return err
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Printf("store: %s: discarding stale delete of %s", c.kind, id)
		return err
	}
	for i, row := range c.rows {
		if row.EntityID() == id {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if err == nil {
		c.notify(Mutation{Kind: c.kind, Verb: "delete", ID: id})
	}
	return err
}

// notify invokes the mutation hook outside the rows lock.
func (c *Cache[T, D]) notify(m Mutation) {
	c.mu.Lock()
	fn := c.onMutation
	c.mu.Unlock()
	if fn != nil {
		fn(m)
	}
}

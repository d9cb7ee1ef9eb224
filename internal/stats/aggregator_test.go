// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package stats

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/webitof/crmdash/internal/model"
)

func TestAggregator_ZeroBeforeFirstFetch(t *testing.T) {
	agg := New(func(ctx context.Context) (model.Overview, error) {
		return model.Overview{}, nil
	})

	if agg.Fetched() {
		t.Error("Fetched() = true before any refresh")
	}
	snap := agg.Snapshot()
	if snap.TotalLeads != 0 || snap.TotalUsers != 0 || len(snap.LeadStages) != 0 {
		t.Errorf("pre-fetch snapshot = %+v, want zero value", snap)
	}
}

func TestAggregator_RefreshReplacesWholesale(t *testing.T) {
	var serve atomic.Value
	serve.Store(model.Overview{
		TotalLeads: 5,
		LeadStages: []model.BucketCount{{Name: "New", Count: 5}},
	})

	agg := New(func(ctx context.Context) (model.Overview, error) {
		return serve.Load().(model.Overview), nil
	})

	if _, err := agg.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !agg.Fetched() {
		t.Error("Fetched() = false after success")
	}
	if got := agg.Snapshot().StageCount(model.StageNew); got != 5 {
		t.Errorf("StageCount(New) = %d, want 5", got)
	}

	// The second snapshot drops the bucket entirely; nothing from the
	// first may survive.
	serve.Store(model.Overview{TotalLeads: 2})
	if _, err := agg.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := agg.Snapshot()
	if snap.TotalLeads != 2 || len(snap.LeadStages) != 0 {
		t.Errorf("snapshot = %+v, want wholesale replacement", snap)
	}
}

func TestAggregator_FailureKeepsSnapshot(t *testing.T) {
	var fail atomic.Bool
	agg := New(func(ctx context.Context) (model.Overview, error) {
		if fail.Load() {
			return model.Overview{}, errors.New("backend down")
		}
		return model.Overview{TotalLeads: 7}, nil
	})

	if _, err := agg.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	fail.Store(true)
	snap, err := agg.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh should fail")
	}
	if snap.TotalLeads != 7 {
		t.Errorf("returned snapshot = %+v, want previous kept", snap)
	}
	if agg.Snapshot().TotalLeads != 7 {
		t.Error("stored snapshot must survive a failed refresh")
	}
	if agg.Err() == nil {
		t.Error("Err() = nil after failure")
	}
	if !agg.Fetched() {
		t.Error("Fetched() must stay true once a refresh succeeded")
	}
}

func TestAggregator_SubscriberOnSuccessOnly(t *testing.T) {
	var fail atomic.Bool
	agg := New(func(ctx context.Context) (model.Overview, error) {
		if fail.Load() {
			return model.Overview{}, errors.New("down")
		}
		return model.Overview{TotalClients: 3}, nil
	})

	var calls atomic.Int64
	agg.Subscribe(func(o model.Overview) {
		calls.Add(1)
		if o.TotalClients != 3 {
			t.Errorf("subscriber got %+v", o)
		}
	})

	if _, err := agg.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Fatalf("subscriber called %d times, want 1", calls.Load())
	}

	fail.Store(true)
	agg.Refresh(context.Background())
	if calls.Load() != 1 {
		t.Error("subscriber must not fire on a failed refresh")
	}
}

func TestAggregator_ConcurrentRefreshCoalesces(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int64
	agg := New(func(ctx context.Context) (model.Overview, error) {
		calls.Add(1)
		<-gate
		return model.Overview{TotalLeads: 1}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.Refresh(context.Background())
		}()
	}

	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times for 4 concurrent refreshes, want 1", got)
	}
}

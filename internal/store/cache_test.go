// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/model"
)

// fakeBackend is an in-test stand-in for the API client. Each op can
// be overridden per test; list calls are counted.
type fakeBackend struct {
	mu        sync.Mutex
	rows      []model.Lead
	listCalls atomic.Int64

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// listGate, when set, blocks List until released. Used to hold a
	// fetch in flight. createGate does the same for Create.
	listGate    chan struct{}
	createGate  chan struct{}
	createCalls atomic.Int64
}

func (f *fakeBackend) list(ctx context.Context) ([]model.Lead, error) {
	f.listCalls.Add(1)
	if f.listGate != nil {
		<-f.listGate
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Lead, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeBackend) create(ctx context.Context, d model.LeadDraft) (model.Lead, error) {
	f.createCalls.Add(1)
	if f.createGate != nil {
		<-f.createGate
	}
	if f.createErr != nil {
		return model.Lead{}, f.createErr
	}
	return model.Lead{ID: "new", Name: d.Name, Stage: d.Stage}, nil
}

func (f *fakeBackend) update(ctx context.Context, id string, d model.LeadDraft) (model.Lead, error) {
	if f.updateErr != nil {
		return model.Lead{}, f.updateErr
	}
	return model.Lead{ID: id, Name: d.Name, Stage: d.Stage}, nil
}

func (f *fakeBackend) delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func newLeadCache(f *fakeBackend) *Cache[model.Lead, model.LeadDraft] {
	return NewCache("lead", Ops[model.Lead, model.LeadDraft]{
		List:   f.list,
		Create: f.create,
		Update: f.update,
		Delete: f.delete,
	})
}

func lead(id, name string) model.Lead {
	return model.Lead{ID: id, Name: name, Stage: model.StageNew}
}

func TestCache_RefreshLifecycle(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme"), lead("l2", "Globex")}}
	cache := newLeadCache(backend)

	if cache.State() != StateEmpty {
		t.Fatalf("initial state = %v, want empty", cache.State())
	}
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if cache.State() != StateReady {
		t.Errorf("state = %v after refresh, want ready", cache.State())
	}

	rows := cache.Rows()
	if len(rows) != 2 || rows[0].ID != "l1" || rows[1].ID != "l2" {
		t.Errorf("rows = %+v, want server order preserved", rows)
	}
}

func TestCache_RefreshFailurePreservesRows(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	backend.listErr = errors.New("backend down")
	if err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh should fail")
	}

	if cache.State() != StateError {
		t.Errorf("state = %v, want error", cache.State())
	}
	if cache.Err() == nil {
		t.Error("Err() = nil in error state")
	}
	if rows := cache.Rows(); len(rows) != 1 || rows[0].ID != "l1" {
		t.Errorf("rows = %+v, want previous rows preserved", rows)
	}

	// Recovery clears the error.
	backend.listErr = nil
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if cache.State() != StateReady || cache.Err() != nil {
		t.Error("recovered refresh should return to ready")
	}
}

func TestCache_RefreshSingleFlight(t *testing.T) {
	backend := &fakeBackend{
		rows:     []model.Lead{lead("l1", "Acme")},
		listGate: make(chan struct{}),
	}
	cache := newLeadCache(backend)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_ = cache.Refresh(context.Background())
		}()
	}
	close(start)

	// Let the refreshers pile up behind the gated fetch, then release.
	for backend.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(backend.listGate)
	wg.Wait()

	if got := backend.listCalls.Load(); got != 1 {
		t.Errorf("List called %d times for 5 concurrent refreshes, want 1", got)
	}
	if cache.State() != StateReady {
		t.Errorf("state = %v, want ready", cache.State())
	}
}

func TestCache_ResetDiscardsStaleFlight(t *testing.T) {
	backend := &fakeBackend{
		rows:     []model.Lead{lead("l1", "Acme")},
		listGate: make(chan struct{}),
	}
	cache := newLeadCache(backend)

	done := make(chan error, 1)
	go func() { done <- cache.Refresh(context.Background()) }()
	for backend.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	// Logout happens while the fetch is in the air.
	cache.Reset()
	close(backend.listGate)
	<-done

	if cache.State() != StateEmpty {
		t.Errorf("state = %v after reset, want empty", cache.State())
	}
	if rows := cache.Rows(); len(rows) != 0 {
		t.Errorf("stale fetch resurrected rows: %+v", rows)
	}
}

func TestCache_ResetDiscardsStaleMutation(t *testing.T) {
	backend := &fakeBackend{
		rows:       []model.Lead{lead("l1", "Acme")},
		createGate: make(chan struct{}),
	}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	var hookFired atomic.Int64
	cache.SetMutationHook(func(Mutation) { hookFired.Add(1) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cache.Create(context.Background(), model.LeadDraft{Name: "Initech", Stage: model.StageNew})
	}()
	for backend.createCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	// Logout happens while the create is in the air.
	cache.Reset()
	close(backend.createGate)
	<-done

	if cache.State() != StateEmpty {
		t.Errorf("state = %v after reset, want empty", cache.State())
	}
	if rows := cache.Rows(); len(rows) != 0 {
		t.Errorf("stale create landed in the emptied cache: %+v", rows)
	}
	if hookFired.Load() != 0 {
		t.Error("discarded mutation must not fire the hook")
	}
}

func TestCache_CreateAppendsOnConfirm(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	created, err := cache.Create(context.Background(), model.LeadDraft{Name: "Initech", Stage: model.StageNew})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows := cache.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1].ID != created.ID {
		t.Error("created row must be appended last")
	}
}

func TestCache_CreateFailureLeavesRows(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	backend.createErr = api.ErrValidation
	if _, err := cache.Create(context.Background(), model.LeadDraft{}); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if len(cache.Rows()) != 1 {
		t.Error("failed create must not change rows")
	}
}

func TestCache_UpdateReplacesInPlace(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme"), lead("l2", "Globex")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Update(context.Background(), "l1", model.LeadDraft{Name: "Acme Corp", Stage: model.StageContacted}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rows := cache.Rows()
	if rows[0].ID != "l1" || rows[0].Name != "Acme Corp" {
		t.Errorf("rows[0] = %+v, want replaced in place", rows[0])
	}
	if rows[1].ID != "l2" {
		t.Error("unrelated rows must keep their position")
	}
}

func TestCache_UpdateMissNeverInserts(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The record is gone locally (another actor deleted it, cache
	// already reconciled) but the backend still accepts the update.
	if _, err := cache.Update(context.Background(), "ghost", model.LeadDraft{Name: "Ghost", Stage: model.StageNew}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	for _, r := range cache.Rows() {
		if r.ID == "ghost" {
			t.Error("update on a missing id must not insert")
		}
	}
}

func TestCache_DeleteRemovesOnConfirm(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme"), lead("l2", "Globex")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := cache.Delete(context.Background(), "l1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows := cache.Rows()
	if len(rows) != 1 || rows[0].ID != "l2" {
		t.Errorf("rows = %+v after delete", rows)
	}
}

func TestCache_DeleteNotFoundReconciles(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Another actor deleted it first. The error still surfaces, but
	// the stale row is reconciled away.
	backend.deleteErr = api.ErrNotFound
	err := cache.Delete(context.Background(), "l1")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("err = %v, want not-found to propagate", err)
	}
	if len(cache.Rows()) != 0 {
		t.Error("not-found delete must reconcile the row away")
	}
}

func TestCache_DeleteOtherFailureLeavesRows(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	backend.deleteErr = errors.New("backend down")
	if err := cache.Delete(context.Background(), "l1"); err == nil {
		t.Fatal("Delete should fail")
	}
	if len(cache.Rows()) != 1 {
		t.Error("failed delete must not change rows")
	}
}

func TestCache_ReadOnly(t *testing.T) {
	cache := NewCache("staff", Ops[model.Lead, model.LeadDraft]{
		List: func(ctx context.Context) ([]model.Lead, error) { return nil, nil },
	})

	if _, err := cache.Create(context.Background(), model.LeadDraft{}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Create err = %v, want ErrReadOnly", err)
	}
	if _, err := cache.Update(context.Background(), "x", model.LeadDraft{}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Update err = %v, want ErrReadOnly", err)
	}
	if err := cache.Delete(context.Background(), "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete err = %v, want ErrReadOnly", err)
	}
}

func TestCache_MutationHook(t *testing.T) {
	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme")}}
	cache := newLeadCache(backend)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	var got []Mutation
	cache.SetMutationHook(func(m Mutation) { got = append(got, m) })

	if _, err := cache.Create(context.Background(), model.LeadDraft{Name: "X", Stage: model.StageNew}); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Update(context.Background(), "l1", model.LeadDraft{Name: "Y", Stage: model.StageNew}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete(context.Background(), "l1"); err != nil {
		t.Fatal(err)
	}

	want := []Mutation{
		{Kind: "lead", Verb: "create", ID: "new"},
		{Kind: "lead", Verb: "update", ID: "l1"},
		{Kind: "lead", Verb: "delete", ID: "l1"},
	}
	if len(got) != len(want) {
		t.Fatalf("hook fired %d times, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hook[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Failed mutations never reach the hook.
	backend.createErr = api.ErrValidation
	cache.Create(context.Background(), model.LeadDraft{})
	if len(got) != len(want) {
		t.Error("failed create must not fire the hook")
	}
}

func TestLeads_ConvertLeavesRowsUntouched(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"message":"converted"}`))
	}))
	defer srv.Close()

	backend := &fakeBackend{rows: []model.Lead{lead("l1", "Acme"), lead("l2", "Globex")}}
	leads := &Leads{client: api.New(srv.URL, nil), Cache: newLeadCache(backend)}
	if err := leads.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	var got []Mutation
	leads.SetMutationHook(func(m Mutation) { got = append(got, m) })

	if err := leads.Convert(context.Background(), "l1"); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	// Conversion creates a client record server-side; the lead rows
	// stay exactly as fetched.
	rows := leads.Rows()
	if len(rows) != 2 || rows[0].ID != "l1" || rows[1].ID != "l2" {
		t.Errorf("rows = %+v, converted lead must stay in the collection", rows)
	}
	if gotPath != "/l1/convert" {
		t.Errorf("path = %q, want /l1/convert", gotPath)
	}
	if len(got) != 1 || got[0] != (Mutation{Kind: "lead", Verb: "convert", ID: "l1"}) {
		t.Errorf("hook = %+v, want one convert mutation", got)
	}
}

func TestStores_ResetAll(t *testing.T) {
	// The wiring test uses a nil client only for structure; no calls
	// are made.
	stores := &Stores{
		Users:    NewCache("user", Ops[model.User, model.UserDraft]{}),
		Staff:    NewCache("staff", Ops[model.User, model.UserDraft]{}),
		Leads:    &Leads{Cache: NewCache("lead", Ops[model.Lead, model.LeadDraft]{})},
		Clients:  NewCache("client", Ops[model.Client, model.ClientDraft]{}),
		Projects: NewCache("project", Ops[model.Project, model.ProjectDraft]{}),
	}
	stores.Reset()
	if stores.Users.State() != StateEmpty || stores.Leads.State() != StateEmpty {
		t.Error("Reset must leave every cache empty")
	}
}

// ABOUTME: Unit tests for the index manager state machine
// ABOUTME: Scripts store status sequences to cover ready, failure, timeout, and recreate
package index

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/docteam/ragstack/internal/store"
)

// fakeAdmin scripts ListSearchIndexes responses and records admin calls.
type fakeAdmin struct {
	listings  [][]store.IndexStatus
	listCalls int
	created   []store.IndexDefinition
	dropped   []string
	listErr   error
}

func (f *fakeAdmin) ListSearchIndexes(context.Context) ([]store.IndexStatus, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	i := f.listCalls
	f.listCalls++
	if i >= len(f.listings) {
		i = len(f.listings) - 1
	}
	return f.listings[i], nil
}

func (f *fakeAdmin) CreateSearchIndex(_ context.Context, def store.IndexDefinition) error {
	f.created = append(f.created, def)
	return nil
}

func (f *fakeAdmin) DropSearchIndex(_ context.Context, name string) error {
	f.dropped = append(f.dropped, name)
	return nil
}

func statusListing(statuses ...string) []store.IndexStatus {
	out := make([]store.IndexStatus, len(statuses))
	for i, s := range statuses {
		out[i] = store.IndexStatus{Name: "vector_index", Status: s}
	}
	return out
}

func testDef() store.IndexDefinition {
	return store.NewVectorIndex("vector_index", "embedding", 8)
}

func TestEnsureIndex_ReadyAfterPolls(t *testing.T) {
	admin := &fakeAdmin{listings: [][]store.IndexStatus{
		nil, // initial existence check: absent
		statusListing(store.IndexStatusCreating),
		statusListing(store.IndexStatusCreating),
		statusListing(store.IndexStatusReady),
	}}
	mgr := NewManager(admin, 10, time.Millisecond)

	ready, err := mgr.EnsureIndex(context.Background(), testDef())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ready {
		t.Error("expected index to become ready")
	}
	if len(admin.created) != 1 {
		t.Errorf("expected 1 create call, got %d", len(admin.created))
	}
	if len(admin.dropped) != 0 {
		t.Errorf("expected no drop calls, got %v", admin.dropped)
	}
	// Initial check plus three status polls.
	if admin.listCalls != 4 {
		t.Errorf("expected 4 list calls, got %d", admin.listCalls)
	}
}

func TestEnsureIndex_TimeoutReturnsFalse(t *testing.T) {
	admin := &fakeAdmin{listings: [][]store.IndexStatus{
		nil,
		statusListing(store.IndexStatusCreating),
	}}
	mgr := NewManager(admin, 3, time.Millisecond)

	ready, err := mgr.EnsureIndex(context.Background(), testDef())
	if err != nil {
		t.Fatalf("timeout must not be an error, got: %v", err)
	}
	if ready {
		t.Error("expected timeout to report not ready")
	}
}

func TestEnsureIndex_FailedIsTerminal(t *testing.T) {
	admin := &fakeAdmin{listings: [][]store.IndexStatus{
		nil,
		statusListing(store.IndexStatusCreating),
		statusListing(store.IndexStatusFailed),
	}}
	mgr := NewManager(admin, 10, time.Millisecond)

	ready, err := mgr.EnsureIndex(context.Background(), testDef())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ready {
		t.Error("expected FAILED status to report not ready")
	}
	// Polling must stop at the terminal state, well below the bound.
	if admin.listCalls != 3 {
		t.Errorf("expected 3 list calls, got %d", admin.listCalls)
	}
}

func TestEnsureIndex_RecreatesExisting(t *testing.T) {
	admin := &fakeAdmin{listings: [][]store.IndexStatus{
		statusListing(store.IndexStatusReady), // exists
		statusListing(store.IndexStatusDeleting),
		nil, // gone
		statusListing(store.IndexStatusCreating),
		statusListing(store.IndexStatusReady),
	}}
	mgr := NewManager(admin, 10, time.Millisecond)

	ready, err := mgr.EnsureIndex(context.Background(), testDef())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ready {
		t.Error("expected recreated index to become ready")
	}
	if len(admin.dropped) != 1 || admin.dropped[0] != "vector_index" {
		t.Errorf("expected vector_index to be dropped once, got %v", admin.dropped)
	}
	if len(admin.created) != 1 {
		t.Errorf("expected 1 create call, got %d", len(admin.created))
	}
}

func TestEnsureIndex_DropTimeoutIsFatal(t *testing.T) {
	admin := &fakeAdmin{listings: [][]store.IndexStatus{
		statusListing(store.IndexStatusReady),
		statusListing(store.IndexStatusDeleting), // never goes away
	}}
	mgr := NewManager(admin, 3, time.Millisecond)

	_, err := mgr.EnsureIndex(context.Background(), testDef())
	if err == nil || !strings.Contains(err.Error(), "dropped") {
		t.Fatalf("expected drop timeout error, got %v", err)
	}
	if len(admin.created) != 0 {
		t.Error("create must not run after a drop timeout")
	}
}

func TestEnsureIndex_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	admin := &fakeAdmin{listErr: boom}
	mgr := NewManager(admin, 3, time.Millisecond)

	_, err := mgr.EnsureIndex(context.Background(), testDef())
	if !errors.Is(err, boom) {
		t.Errorf("expected transport error to propagate, got %v", err)
	}
}

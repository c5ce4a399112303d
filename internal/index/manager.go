// ABOUTME: Vector search index lifecycle management with bounded polling
// ABOUTME: Drop-then-recreate, then poll until READY, FAILED, or timeout
package index

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/docteam/ragstack/internal/store"
	"github.com/docteam/ragstack/internal/util"
)

// Admin is the slice of the document store the manager needs.
type Admin interface {
	ListSearchIndexes(ctx context.Context) ([]store.IndexStatus, error)
	CreateSearchIndex(ctx context.Context, def store.IndexDefinition) error
	DropSearchIndex(ctx context.Context, name string) error
}

// Manager drives a named vector index through its lifecycle. The store
// builds indexes asynchronously: create only means the request was
// accepted, so readiness is established by polling the listing.
type Manager struct {
	admin    Admin
	attempts int
	interval time.Duration
}

// NewManager creates a Manager polling up to attempts times at the given
// interval.
func NewManager(admin Admin, attempts int, interval time.Duration) *Manager {
	if attempts <= 0 {
		attempts = 60
	}
	return &Manager{admin: admin, attempts: attempts, interval: interval}
}

// EnsureIndex makes the definition's index exist and become queryable.
// An index with the same name is dropped first and its deletion awaited.
// The return value is readiness: false without an error means the index
// ended FAILED or the polling bound was exhausted. Errors are reserved
// for transport failures and for the drop phase timing out.
func (m *Manager) EnsureIndex(ctx context.Context, def store.IndexDefinition) (bool, error) {
	existing, err := m.admin.ListSearchIndexes(ctx)
	if err != nil {
		return false, err
	}

	if containsIndex(existing, def.Name) {
		log.Infof("index %q already exists, recreating", def.Name)
		if err := m.admin.DropSearchIndex(ctx, def.Name); err != nil {
			return false, err
		}
		gone, err := util.Poll(ctx, m.attempts, m.interval, func(ctx context.Context) (util.Outcome, error) {
			listing, err := m.admin.ListSearchIndexes(ctx)
			if err != nil {
				return util.Pending, err
			}
			if containsIndex(listing, def.Name) {
				return util.Pending, nil
			}
			return util.Ready, nil
		})
		if err != nil {
			return false, err
		}
		if !gone {
			return false, fmt.Errorf("timed out waiting for index %q to be dropped", def.Name)
		}
		log.Infof("index %q deletion complete", def.Name)
	}

	if err := m.admin.CreateSearchIndex(ctx, def); err != nil {
		return false, err
	}
	log.Infof("index %q build submitted, waiting for READY", def.Name)
	return m.waitReady(ctx, def.Name)
}

// waitReady polls the index status until READY, a terminal state, or the
// attempt bound. Terminal states and timeouts are ordinary false results.
func (m *Manager) waitReady(ctx context.Context, name string) (bool, error) {
	return util.Poll(ctx, m.attempts, m.interval, func(ctx context.Context) (util.Outcome, error) {
		listing, err := m.admin.ListSearchIndexes(ctx)
		if err != nil {
			return util.Pending, err
		}
		for _, idx := range listing {
			if idx.Name != name {
				continue
			}
			switch idx.Status {
			case store.IndexStatusReady:
				log.Infof("index %q status: READY", name)
				return util.Ready, nil
			case store.IndexStatusFailed, store.IndexStatusDeleting:
				log.Warnf("index %q status: %s", name, idx.Status)
				return util.Failed, nil
			}
		}
		return util.Pending, nil
	})
}

func containsIndex(listing []store.IndexStatus, name string) bool {
	for _, idx := range listing {
		if idx.Name == name {
			return true
		}
	}
	return false
}

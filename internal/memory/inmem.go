// ABOUTME: In-memory chat memory for tests and local runs without a store
// ABOUTME: Same ordering and idempotency semantics as the MongoDB implementation
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/docteam/ragstack/internal/models"
)

// InMemory implements Memory with a process-local message slice.
type InMemory struct {
	mu       sync.Mutex
	messages []models.ChatMessage

	// Now supplies timestamps; overridable in tests.
	Now func() time.Time
}

var _ Memory = (*InMemory)(nil)

// NewInMemory returns an empty in-memory chat memory.
func NewInMemory() *InMemory {
	return &InMemory{Now: time.Now}
}

func (m *InMemory) Append(_ context.Context, sessionID, role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: m.Now().UTC(),
	})
	return nil
}

func (m *InMemory) History(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ChatMessage{}
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (m *InMemory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.SessionID != sessionID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

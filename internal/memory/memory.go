// ABOUTME: Chat memory capability: append-only session-scoped conversation log
// ABOUTME: Ordered retrieval by timestamp and idempotent full-session deletion
package memory

import (
	"context"

	"github.com/docteam/ragstack/internal/models"
)

// Memory stores conversation history scoped by session. History for an
// unknown session is an empty list, never an error, and Clear is
// idempotent.
type Memory interface {
	// Append inserts one message with a server-assigned timestamp.
	Append(ctx context.Context, sessionID, role, content string) error

	// History returns the session's messages sorted ascending by timestamp.
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	// Clear deletes all messages for the session.
	Clear(ctx context.Context, sessionID string) error
}

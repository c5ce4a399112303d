// ABOUTME: ChatMessage is one turn of session-scoped conversation history
// ABOUTME: Append-only records ordered by server-assigned timestamp
package models

import "time"

// Message roles stored in chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single stored conversation message. Messages are never
// mutated; they are created on generate and removed only by clearing the
// whole session.
type ChatMessage struct {
	SessionID string    `bson:"session_id" json:"session_id"`
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

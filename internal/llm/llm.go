// ABOUTME: Completion service capability and its error taxonomy
// ABOUTME: A non-success response is a StatusError carrying the service payload
package llm

import (
	"context"
	"fmt"
)

// Message is a single role/content turn in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the remote completion capability.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// StatusError reports a non-success response from the completion service.
// Callers that must stay total convert it into answer text instead of
// propagating it.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion service returned %d: %s", e.StatusCode, e.Message)
}

// ABOUTME: Generator assembles the grounded prompt and drives the completion service
// ABOUTME: Persists the exchange to session memory after the completion attempt
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/docteam/ragstack/internal/llm"
	"github.com/docteam/ragstack/internal/memory"
	"github.com/docteam/ragstack/internal/models"
)

const promptTemplate = "Answer the question based only on the following context. If the context is empty, say I DON'T KNOW\n\nContext:\n%s\n\nQuestion:%s"

// Generator answers questions over retrieved context. Retrieval feeds a
// fixed instruction prompt, prior session turns are replayed between the
// instruction and the live question, and the exchange is written to
// memory after the completion attempt.
type Generator struct {
	retriever *Retriever
	completer llm.Completer
	memory    memory.Memory
}

// NewGenerator creates a Generator. memory may be nil, in which case no
// history is read or written.
func NewGenerator(retriever *Retriever, completer llm.Completer, mem memory.Memory) *Generator {
	return &Generator{retriever: retriever, completer: completer, memory: mem}
}

// Generate retrieves context for the query, asks the completion service,
// and returns the answer text. A non-success completion response becomes
// answer text rather than an error, so a degraded completion service
// still yields a response. When sessionID is non-empty the session's
// history is included in the request and the exchange is persisted
// afterwards, whether the completion succeeded or not.
func (g *Generator) Generate(ctx context.Context, query, sessionID string, useRerank bool, filter map[string]any) (string, error) {
	var results []models.SearchResult
	var err error
	if useRerank {
		results, err = g.retriever.SearchWithRerank(ctx, query, RerankOptions{Filter: filter})
	} else {
		results, err = g.retriever.Search(ctx, query, SearchOptions{Filter: filter})
	}
	if err != nil {
		return "", err
	}

	messages, err := g.buildMessages(ctx, query, sessionID, results)
	if err != nil {
		return "", err
	}

	answer, err := g.completer.Complete(ctx, messages)
	if err != nil {
		var statusErr *llm.StatusError
		if !errors.As(err, &statusErr) {
			return "", err
		}
		log.WithField("status", statusErr.StatusCode).Warn("completion service returned an error payload")
		answer = fmt.Sprintf("Error: %s", statusErr.Message)
	}

	if sessionID != "" && g.memory != nil {
		if err := g.memory.Append(ctx, sessionID, models.RoleUser, query); err != nil {
			return "", fmt.Errorf("recording user turn: %w", err)
		}
		if err := g.memory.Append(ctx, sessionID, models.RoleAssistant, answer); err != nil {
			return "", fmt.Errorf("recording assistant turn: %w", err)
		}
	}
	return answer, nil
}

// buildMessages produces the completion request: the context-grounded
// instruction first, then prior session turns oldest-first, then the
// live question.
func (g *Generator) buildMessages(ctx context.Context, query, sessionID string, results []models.SearchResult) ([]llm.Message, error) {
	bodies := make([]string, len(results))
	for i, res := range results {
		bodies[i] = res.Body
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(bodies, "\n\n"), query)

	messages := []llm.Message{{Role: models.RoleUser, Content: prompt}}
	if sessionID != "" && g.memory != nil {
		history, err := g.memory.History(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("loading session history: %w", err)
		}
		for _, turn := range history {
			messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
		}
	}
	messages = append(messages, llm.Message{Role: models.RoleUser, Content: query})
	return messages, nil
}

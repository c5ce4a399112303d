// ABOUTME: Unit tests for the answer generator
// ABOUTME: Verifies prompt assembly, history ordering, and degraded-completion persistence
package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docteam/ragstack/internal/embeddings"
	"github.com/docteam/ragstack/internal/llm"
	"github.com/docteam/ragstack/internal/memory"
	"github.com/docteam/ragstack/internal/models"
)

// fakeCompleter records the request and returns a scripted answer or error.
type fakeCompleter struct {
	answer   string
	err      error
	received []llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.received = messages
	return f.answer, f.err
}

func newTestGenerator(st *fakeStore, completer llm.Completer, mem memory.Memory) *Generator {
	embedder := &fakeEmbedder{queryVector: []float64{0.1}}
	retriever := NewRetriever(st, embedder, testDefaults())
	return NewGenerator(retriever, completer, mem)
}

func TestGenerate_PromptContainsContext(t *testing.T) {
	st := &fakeStore{results: results("first passage", "second passage")}
	completer := &fakeCompleter{answer: "grounded answer"}
	g := newTestGenerator(st, completer, nil)

	answer, err := g.Generate(context.Background(), "what is it?", "", false, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer != "grounded answer" {
		t.Errorf("answer = %q", answer)
	}

	if len(completer.received) != 2 {
		t.Fatalf("expected instruction + question, got %d messages", len(completer.received))
	}
	prompt := completer.received[0].Content
	if !strings.Contains(prompt, "first passage\n\nsecond passage") {
		t.Errorf("context passages missing or mis-joined:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Question:what is it?") {
		t.Errorf("question missing from prompt:\n%s", prompt)
	}
	if completer.received[1].Content != "what is it?" {
		t.Errorf("live question not last: %+v", completer.received)
	}
}

func TestGenerate_EmptyContextPrompt(t *testing.T) {
	st := &fakeStore{results: nil}
	completer := &fakeCompleter{answer: "I DON'T KNOW"}
	g := newTestGenerator(st, completer, nil)

	if _, err := g.Generate(context.Background(), "anything?", "", false, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := "Answer the question based only on the following context. If the context is empty, say I DON'T KNOW\n\nContext:\n\n\nQuestion:anything?"
	if completer.received[0].Content != want {
		t.Errorf("empty-context prompt mismatch:\ngot:  %q\nwant: %q", completer.received[0].Content, want)
	}
}

func TestGenerate_HistoryOrderedBetweenPromptAndQuestion(t *testing.T) {
	mem := memory.NewInMemory()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	mem.Now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	ctx := context.Background()
	mem.Append(ctx, "s1", models.RoleUser, "earlier question")
	mem.Append(ctx, "s1", models.RoleAssistant, "earlier answer")

	st := &fakeStore{results: results("passage")}
	completer := &fakeCompleter{answer: "reply"}
	g := newTestGenerator(st, completer, mem)

	if _, err := g.Generate(ctx, "follow-up?", "s1", false, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := completer.received
	if len(got) != 4 {
		t.Fatalf("expected instruction + 2 history turns + question, got %d", len(got))
	}
	if got[1].Content != "earlier question" || got[1].Role != models.RoleUser {
		t.Errorf("history turn 1 wrong: %+v", got[1])
	}
	if got[2].Content != "earlier answer" || got[2].Role != models.RoleAssistant {
		t.Errorf("history turn 2 wrong: %+v", got[2])
	}
	if got[3].Content != "follow-up?" {
		t.Errorf("live question not last: %+v", got[3])
	}
}

func TestGenerate_PersistsExchangeAfterCompletion(t *testing.T) {
	mem := memory.NewInMemory()
	st := &fakeStore{results: results("passage")}
	completer := &fakeCompleter{answer: "the reply"}
	g := newTestGenerator(st, completer, mem)

	ctx := context.Background()
	if _, err := g.Generate(ctx, "q1", "s1", false, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	history, err := mem.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(history))
	}
	if history[0].Role != models.RoleUser || history[0].Content != "q1" {
		t.Errorf("user turn wrong: %+v", history[0])
	}
	if history[1].Role != models.RoleAssistant || history[1].Content != "the reply" {
		t.Errorf("assistant turn wrong: %+v", history[1])
	}

	// The persisted turns were not part of the request that produced them.
	if len(completer.received) != 2 {
		t.Errorf("live exchange leaked into its own request: %d messages", len(completer.received))
	}
}

func TestGenerate_CompletionStatusErrorBecomesAnswer(t *testing.T) {
	mem := memory.NewInMemory()
	st := &fakeStore{results: results("passage")}
	completer := &fakeCompleter{err: &llm.StatusError{StatusCode: 502, Message: "model overloaded"}}
	g := newTestGenerator(st, completer, mem)

	ctx := context.Background()
	answer, err := g.Generate(ctx, "q", "s1", false, nil)
	if err != nil {
		t.Fatalf("status error must not propagate, got: %v", err)
	}
	if answer != "Error: model overloaded" {
		t.Errorf("answer = %q", answer)
	}

	// The degraded answer is persisted like any other.
	history, _ := mem.History(ctx, "s1")
	if len(history) != 2 || history[1].Content != "Error: model overloaded" {
		t.Errorf("degraded exchange not persisted: %+v", history)
	}
}

func TestGenerate_TransportErrorPropagatesUnpersisted(t *testing.T) {
	mem := memory.NewInMemory()
	st := &fakeStore{results: results("passage")}
	completer := &fakeCompleter{err: fmt.Errorf("dial tcp: connection refused")}
	g := newTestGenerator(st, completer, mem)

	ctx := context.Background()
	if _, err := g.Generate(ctx, "q", "s1", false, nil); err == nil {
		t.Fatal("expected transport error to propagate")
	}
	history, _ := mem.History(ctx, "s1")
	if len(history) != 0 {
		t.Errorf("transport failure must not persist turns, got %+v", history)
	}
}

func TestGenerate_RerankPathUsed(t *testing.T) {
	st := &fakeStore{results: results("a", "b")}
	embedder := &fakeEmbedder{
		queryVector: []float64{0.1},
		ranked: []embeddings.RerankResult{
			{Index: 1, RelevanceScore: 0.8},
			{Index: 0, RelevanceScore: 0.2},
		},
	}
	retriever := NewRetriever(st, embedder, testDefaults())
	completer := &fakeCompleter{answer: "ok"}
	g := NewGenerator(retriever, completer, nil)

	if _, err := g.Generate(context.Background(), "q", "", true, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if embedder.rerankCalls != 1 {
		t.Errorf("expected one rerank call, got %d", embedder.rerankCalls)
	}
	prompt := completer.received[0].Content
	if !strings.Contains(prompt, "b\n\na") {
		t.Errorf("context not in rerank order:\n%s", prompt)
	}
}

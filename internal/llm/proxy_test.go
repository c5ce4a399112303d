// ABOUTME: Unit tests for the completion proxy client
// ABOUTME: Uses httptest to verify request shape and error classification
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProxyClient_Complete(t *testing.T) {
	var received completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "the answer"})
	}))
	defer server.Close()

	client := NewProxyClient(server.URL, "secret", time.Second)
	answer, err := client.Complete(context.Background(), []Message{
		{Role: "user", Content: "prompt"},
		{Role: "user", Content: "question"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}
	if received.Task != "completion" {
		t.Errorf("task = %q, want completion", received.Task)
	}
	if len(received.Data) != 2 || received.Data[1].Content != "question" {
		t.Errorf("unexpected message payload: %+v", received.Data)
	}
}

func TestProxyClient_NonSuccessIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "model overloaded"})
	}))
	defer server.Close()

	client := NewProxyClient(server.URL, "", time.Second)
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "q"}})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", statusErr.StatusCode)
	}
	if statusErr.Message != "model overloaded" {
		t.Errorf("message = %q", statusErr.Message)
	}
}

func TestProxyClient_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewProxyClient(server.URL, "", time.Second)
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "q"}})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Message == "" {
		t.Error("expected non-empty message from raw body")
	}
}

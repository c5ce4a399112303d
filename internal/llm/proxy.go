// ABOUTME: HTTP client for the completion proxy endpoint
// ABOUTME: POSTs {task: completion, data: messages} and decodes {text} or {error}
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ProxyClient implements Completer against the completion proxy, a plain
// JSON POST endpoint.
type ProxyClient struct {
	endpoint string
	passkey  string
	client   *http.Client
}

var _ Completer = (*ProxyClient)(nil)

// NewProxyClient creates a completion client. passkey may be empty when
// the endpoint is unauthenticated.
func NewProxyClient(endpoint, passkey string, timeout time.Duration) *ProxyClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ProxyClient{
		endpoint: endpoint,
		passkey:  passkey,
		client:   &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Task string    `json:"task"`
	Data []Message `json:"data"`
}

type completionResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Complete sends the full message sequence and returns the answer text.
// Transport failures are returned as ordinary errors; a non-200 response
// becomes a *StatusError carrying the service's error payload.
func (c *ProxyClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{Task: "completion", Data: messages})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.passkey != "" {
		req.Header.Set("Authorization", "Bearer "+c.passkey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion service: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	var decoded completionResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		if resp.StatusCode == http.StatusOK {
			return "", fmt.Errorf("decoding completion response: %w", err)
		}
		decoded.Error = string(payload)
	}

	if resp.StatusCode != http.StatusOK {
		message := decoded.Error
		if message == "" {
			message = "Unknown error"
		}
		return "", &StatusError{StatusCode: resp.StatusCode, Message: message}
	}
	return decoded.Text, nil
}

// Package completion wraps the text-completion collaborator. The pipeline
// talks to the Client interface; production wiring uses HTTPClient and tests
// or offline runs use StubClient.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a tool-invocation request returned by the collaborator.
type ToolCall struct {
	Tool      ToolID                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Request carries the stage instructions, prior conversation, and the tool
// schemas the collaborator may invoke.
type Request struct {
	Instructions string       `json:"instructions"`
	Messages     []Message    `json:"messages"`
	Tools        []ToolSchema `json:"tools,omitempty"`
}

// Response is free text plus any tool-invocation requests.
type Response struct {
	Text      string     `json:"text"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// Client is the text-completion collaborator.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// HTTPClient talks to a hosted completion service.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	client     *http.Client
	logger     logger.Logger
}

func NewHTTPClient(baseURL, apiKey, model string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		maxRetries: 2,
		// No client-level timeout; callers control deadlines via context.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "completion"}),
	}
}

// Complete sends the request with exponential backoff on transient failures.
func (c *HTTPClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	payload := map[string]interface{}{
		"model":        c.model,
		"instructions": req.Instructions,
		"messages":     req.Messages,
		"tools":        req.Tools,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewCompletionTimeoutError("completion")
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/completions", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build completion request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, lastErr = c.client.Do(httpReq)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, apperrors.NewCompletionTimeoutError("completion")
		}
	}

	if lastErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewCompletionTimeoutError("completion")
		}
		return nil, apperrors.NewCompletionUnavailableError(lastErr)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewCompletionUnavailableError(fmt.Errorf("decode response: %w", err))
	}

	c.logger.Debug("completion received", map[string]interface{}{
		"toolCalls": len(out.ToolCalls),
	})

	return &out, nil
}

// Package assist calls an external text-generation service to produce
// content for insertion into the editor. The editor treats the service as a
// collaborator: it hands over a prompt plus the current document text and
// receives markup-ready text back.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyPrompt rejects a blank prompt before any request is made.
var ErrEmptyPrompt = errors.New("assist: prompt must not be empty")

// Request is one generation request.
type Request struct {
	// Prompt is the user's instruction.
	Prompt string
	// ContextText is the current document content, sent along so responses
	// can refer to what the user is writing.
	ContextText string
}

// Response is the service's generated output.
type Response struct {
	Text string
}

// Client talks to an Ollama-compatible generate endpoint.
type Client struct {
	endpoint string
	model    string
	http     *http.Client
}

// NewClient builds a client for the given endpoint and model.
func NewClient(endpoint, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		http:     &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends the request and returns the generated text. A blank prompt
// fails with ErrEmptyPrompt without touching the network.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, ErrEmptyPrompt
	}

	prompt := req.Prompt
	if strings.TrimSpace(req.ContextText) != "" {
		prompt = fmt.Sprintf("Document:\n%s\n\nInstruction: %s", req.ContextText, req.Prompt)
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("call assist service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("assist service returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return Response{}, fmt.Errorf("assist service error: %s", out.Error)
	}
	return Response{Text: out.Response}, nil
}

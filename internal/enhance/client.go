package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNoAPIKey is returned when a request would go out without credentials.
var ErrNoAPIKey = errors.New("no API key configured")

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a client for the given base URL, e.g.
// "https://api.openai.com/v1". A trailing slash is tolerated.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  http.DefaultClient,
	}
}

// Authorized reports whether the client carries credentials.
func (c *Client) Authorized() bool {
	return c.apiKey != ""
}

// Message is a single chat turn in API wire form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	Model    string
	Messages []Message
	Params   Params
	Stream   bool
}

func (r Request) payload() map[string]any {
	payload := map[string]any{
		"model":    r.Model,
		"messages": r.Messages,
		"stream":   r.Stream,
	}
	r.Params.apply(payload)
	return payload
}

// Complete runs a non-streaming completion and returns the full text.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	req.Stream = false
	resp, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Stream is an open streaming completion. Recv returns io.EOF after the
// final chunk. The caller must Close it.
type Stream struct {
	body io.ReadCloser
	sc   *Scanner
}

func (s *Stream) Recv() (string, error) {
	return s.sc.Next()
}

func (s *Stream) Close() error {
	return s.body.Close()
}

// StreamCompletion opens a streaming completion over SSE.
func (c *Client) StreamCompletion(ctx context.Context, req Request) (*Stream, error) {
	req.Stream = true
	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Stream{body: resp.Body, sc: NewScanner(resp.Body)}, nil
}

// ListModels fetches the model IDs the endpoint advertises.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if !c.Authorized() {
		return nil, ErrNoAPIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("models API error: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	ids := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *Client) post(ctx context.Context, req Request) (*http.Response, error) {
	if !c.Authorized() {
		return nil, ErrNoAPIKey
	}
	buf, err := json.Marshal(req.payload())
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("chat API error: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

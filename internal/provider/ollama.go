package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"medreader/internal/prompt"
)

const ollamaName = "ollama"

// OllamaClient talks to a locally hosted Ollama runtime over its REST
// API: /api/generate for single-shot analysis, /api/chat for
// multi-turn follow-up, /api/tags as a cheap reachability probe.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOllamaClient builds a client for the given base URL and model.
// connectTimeout bounds dialing; readTimeout bounds the whole exchange
// and should allow for LLM generation latency.
func NewOllamaClient(baseURL, model string, connectTimeout, readTimeout time.Duration) (*OllamaClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ollama base url required")
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model required")
	}
	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		http:    newHTTPClient(connectTimeout, readTimeout),
	}, nil
}

func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: readTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}
}

func (c *OllamaClient) Name() string { return ollamaName }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaChatResponse struct {
	Message ChatMessage `json:"message"`
}

func (c *OllamaClient) AnalyzeReport(ctx context.Context, reportText string) (string, error) {
	req := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt.AnalysisUser(reportText),
		System: prompt.AnalysisSystem,
		Stream: false,
		// Ollama's structured output mode keeps the model on JSON.
		Format: "json",
	}
	var resp ollamaGenerateResponse
	if err := c.post(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", &CallError{Provider: ollamaName, Err: ErrEmptyResponse}
	}
	return resp.Response, nil
}

func (c *OllamaClient) AnswerFollowUp(ctx context.Context, reportText, priorSummary, question string, history []ChatMessage) (string, error) {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: prompt.FollowUpSystem(reportText, priorSummary)})
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: RoleUser, Content: question})

	req := ollamaChatRequest{Model: c.model, Messages: messages, Stream: false}
	var resp ollamaChatResponse
	if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if resp.Message.Content == "" {
		return "", &CallError{Provider: ollamaName, Err: ErrEmptyResponse}
	}
	return resp.Message.Content, nil
}

// Available pings /api/tags. Any failure means unavailable, never an
// error.
func (c *OllamaClient) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *OllamaClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &CallError{Provider: ollamaName, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &CallError{Provider: ollamaName, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &CallError{Provider: ollamaName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &CallError{Provider: ollamaName, Err: fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &CallError{Provider: ollamaName, Err: fmt.Errorf("decode %s response: %w", path, err)}
	}
	return nil
}

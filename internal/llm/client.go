package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// GenerateRequest is one prompt for the coaching model.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse is the model's raw reply.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient is the language model the coach phrases replies with.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the model server is reachable.
	Available(ctx context.Context) bool
}

// ollamaClient talks to a local Ollama server. Replies are requested in
// JSON mode since the coach always asks for a JSON object.
type ollamaClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOllamaClient creates an LLMClient for the Ollama server at cfg.Endpoint.
// A nil observer discards call events.
func NewOllamaClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &ollamaClient{
		cfg:      cfg,
		http:     &http.Client{Transport: &http.Transport{DialContext: dialer.DialContext}},
		observer: observer,
	}
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system,omitempty"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// body builds the /api/generate payload, applying per-request overrides
// over the task defaults.
func (c *ollamaClient) body(req GenerateRequest) ollamaRequest {
	task := c.cfg.Tasks[req.Task]
	opts := ollamaOptions{Temperature: task.Temperature, NumPredict: task.MaxTokens}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		opts.NumPredict = *req.MaxTokens
	}
	return ollamaRequest{
		Model:   c.cfg.Model,
		System:  req.SystemPrompt,
		Prompt:  req.UserPrompt,
		Format:  "json",
		Options: opts,
	}
}

// Generate makes up to 1+MaxRetries attempts, each with its own task
// timeout. It stops early when ctx is done or the server rejects the
// request outright. One observer event is emitted per call.
func (c *ollamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	body := c.body(req)
	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond

	event := LLMCallEvent{Task: req.Task, Model: c.cfg.Model}
	var lastErr error
	for event.Attempts < 1+c.cfg.MaxRetries {
		event.Attempts++
		resp, err := c.attempt(ctx, timeout, body)
		if err == nil {
			event.LatencyMs = time.Since(start).Milliseconds()
			event.Success = true
			c.observer.OnCallComplete(event)
			return &GenerateResponse{Text: resp.Response, Model: resp.Model, LatencyMs: event.LatencyMs}, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	err := classify(ctx, lastErr)
	event.LatencyMs = time.Since(start).Milliseconds()
	event.ErrorCode = errorCode(err)
	c.observer.OnCallComplete(event)
	return nil, err
}

func (c *ollamaClient) attempt(ctx context.Context, timeout time.Duration, body ollamaRequest) (*ollamaResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.post(ctx, body)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return resp, err
}

func (c *ollamaClient) post(ctx context.Context, body ollamaRequest) (*ollamaResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: httpResp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrInvalidOutput, err)
	}
	if strings.TrimSpace(resp.Response) == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrInvalidOutput)
	}
	return &resp, nil
}

func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func retryable(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return status.retryable()
	}
	return true
}

// classify maps the last attempt error onto one sentinel.
func classify(ctx context.Context, err error) error {
	var status *StatusError
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrInvalidOutput):
		return err
	case errors.As(err, &status) && !status.retryable():
		return fmt.Errorf("%w: %w", ErrModelRejected, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrModelUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrModelRejected):
		return "REJECTED"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}

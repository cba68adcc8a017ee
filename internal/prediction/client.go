package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/racehorse-ledger/internal/config"
	"github.com/yourusername/racehorse-ledger/internal/metrics"
)

const maxErrorBody = 4096

// Completer returns a single chat completion
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// ChatMessage is one message of the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat constrains the shape of the model output
type ResponseFormat struct {
	Type string `json:"type"`
}

// CompletionRequest represents the chat completion request payload
type CompletionRequest struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Messages       []ChatMessage   `json:"messages"`
}

// completionResponse is the subset of the service response that is used
type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Completion is the first choice returned by the service
type Completion struct {
	Model   string
	Content string
}

// CompletionClient is an HTTP client for an OpenAI compatible chat completion API.
// Requests are paced by a rate limiter and are never retried.
type CompletionClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewCompletionClient creates a new completion client
func NewCompletionClient(cfg *config.ModelConfig, apiKey string, logger *logrus.Logger) *CompletionClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &CompletionClient{
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Complete sends the request and returns the first choice
func (c *CompletionClient) Complete(ctx context.Context, reqBody CompletionRequest) (*Completion, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.RecordCompletionLatency(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordCompletionError("network")
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.RecordCompletionError("http_status")
		return nil, fmt.Errorf("%w with status %d: %s", ErrCompletionFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.RecordCompletionError("decode")
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(out.Choices) == 0 {
		metrics.RecordCompletionError("no_choices")
		return nil, fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}

	c.logger.WithFields(logrus.Fields{
		"model":    out.Model,
		"duration": time.Since(start),
	}).Debug("Completion received")

	return &Completion{
		Model:   out.Model,
		Content: out.Choices[0].Message.Content,
	}, nil
}

// HealthCheck checks the service is reachable and accepts the API key
func (c *CompletionClient) HealthCheck(ctx context.Context) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	return nil
}

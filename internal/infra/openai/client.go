// Package openai provides a client for the OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("openai")

const (
	defaultModel = "gpt-3.5-turbo"

	completionTemperature = 0.7
	completionMaxTokens   = 500
)

// Client calls the OpenAI chat completions endpoint. Completions are never
// retried; a failed call surfaces immediately as a typed upstream error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewClient creates an OpenAI client. An empty model falls back to
// gpt-3.5-turbo.
func NewClient(httpClient *http.Client, baseURL, apiKey, model string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, logger *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		cb:         cb,
		bulkhead:   bulkhead,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends a system prompt plus the user's message and returns the
// model's reply. Implements port.Completer.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (*domain.Completion, error) {
	ctx, span := tracer.Start(ctx, "OpenAI.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	if c.apiKey == "" {
		return nil, &domain.ErrConfiguration{Setting: "OPENAI_API_KEY"}
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrUpstream{Kind: domain.UpstreamUnavailable, Err: err}
	}
	defer c.bulkhead.Release()

	var completion *domain.Completion

	_, err := c.cb.Execute(func() (any, error) {
		var innerErr error
		completion, innerErr = c.doComplete(ctx, systemPrompt, userMessage)
		return nil, innerErr
	})
	if err != nil {
		var upstream *domain.ErrUpstream
		if errors.As(err, &upstream) {
			return nil, err
		}
		// Breaker-open and similar local failures read as provider outage.
		return nil, &domain.ErrUpstream{Kind: domain.UpstreamUnavailable, Err: err}
	}

	return completion, nil
}

func (c *Client) doComplete(ctx context.Context, systemPrompt, userMessage string) (*domain.Completion, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("openai: request failed", zap.Error(err))
		return nil, &domain.ErrUpstream{Kind: domain.UpstreamUnavailable, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrUpstream{Kind: domain.UpstreamUnavailable, Err: err}
	}

	var parsed chatResponse
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(respBody, &parsed)
		return nil, c.classifyError(resp.StatusCode, &parsed)
	}

	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &domain.ErrUpstream{
			Kind: domain.UpstreamUnavailable,
			Err:  fmt.Errorf("failed to decode completion response: %w", err),
		}
	}

	if len(parsed.Choices) == 0 {
		return nil, &domain.ErrUpstream{
			Kind: domain.UpstreamUnavailable,
			Err:  fmt.Errorf("completion response contained no choices"),
		}
	}

	return &domain.Completion{
		Text: parsed.Choices[0].Message.Content,
		Usage: domain.TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// classifyError maps OpenAI failure responses onto upstream error kinds so
// the handler can render a distinct message for each.
func (c *Client) classifyError(status int, parsed *chatResponse) error {
	detail := fmt.Errorf("openai returned status %d", status)
	if parsed.Error != nil {
		detail = fmt.Errorf("openai returned status %d: %s", status, parsed.Error.Message)
	}

	kind := domain.UpstreamUnavailable
	switch {
	case status == http.StatusUnauthorized:
		kind = domain.UpstreamBadKey
	case status == http.StatusTooManyRequests && parsed.Error != nil && parsed.Error.Code == "insufficient_quota":
		kind = domain.UpstreamQuota
	case status == http.StatusTooManyRequests:
		kind = domain.UpstreamRateLimited
	}

	c.logger.Warn("openai: completion failed",
		zap.Int("status", status),
		zap.String("kind", string(kind)),
		zap.Error(detail),
	)

	return &domain.ErrUpstream{Kind: kind, Err: detail}
}

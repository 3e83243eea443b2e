// Package client provides the HTTP client the conversation session uses to
// reach the assistant backend endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/planmoni/assistant-bfa-go/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("assistant-client")

// AssistantClient posts chat turns to the backend assistant endpoint.
// Calls are never retried; the session renders a fallback message instead.
type AssistantClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewAssistantClient creates a client for the assistant endpoint.
func NewAssistantClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *AssistantClient {
	return &AssistantClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		logger:     logger,
	}
}

// assistantErrorBody is the error payload the backend returns alongside a
// non-2xx status. Response carries the user-facing message.
type assistantErrorBody struct {
	Error    string `json:"error"`
	Response string `json:"response"`
}

// Ask implements port.AssistantCaller.
func (c *AssistantClient) Ask(ctx context.Context, req *domain.AssistantRequest, bearer string) (*domain.AssistantReply, error) {
	ctx, span := tracer.Start(ctx, "AssistantClient.Ask")
	defer span.End()

	var reply *domain.AssistantReply

	_, err := c.cb.Execute(func() (any, error) {
		var innerErr error
		reply, innerErr = c.doAsk(ctx, req, bearer)
		return nil, innerErr
	})
	if err != nil {
		return nil, err
	}

	return reply, nil
}

func (c *AssistantClient) doAsk(ctx context.Context, req *domain.AssistantRequest, bearer string) (*domain.AssistantReply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode assistant request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/ai-assistant", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("assistant client: request failed", zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "assistant", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "assistant", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var errBody assistantErrorBody
		_ = json.Unmarshal(respBody, &errBody)
		c.logger.Warn("assistant client: non-OK response",
			zap.Int("status", resp.StatusCode),
			zap.String("error", errBody.Error),
		)
		return nil, &domain.ErrExternalService{
			Service: "assistant",
			Err:     fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, errBody.Error),
		}
	}

	var reply domain.AssistantReply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, &domain.ErrExternalService{
			Service: "assistant",
			Err:     fmt.Errorf("failed to decode assistant response: %w", err),
		}
	}

	return &reply, nil
}

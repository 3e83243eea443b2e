package openai_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/infra/openai"
	"github.com/planmoni/assistant-bfa-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newClient(serverURL, apiKey string) *openai.Client {
	return openai.NewClient(
		http.DefaultClient,
		serverURL,
		apiKey,
		"gpt-3.5-turbo",
		resilience.NewCircuitBreaker("openai-test"),
		resilience.NewBulkhead(4),
		zap.NewNop(),
	)
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("auth header = %q", auth)
		}
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "Save more."}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "sk-test")

	completion, err := c.Complete(context.Background(), "system prompt", "user message")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if completion.Text != "Save more." {
		t.Errorf("text = %q", completion.Text)
	}
	if completion.Usage.TotalTokens != 150 {
		t.Errorf("total tokens = %d, want 150", completion.Usage.TotalTokens)
	}

	for _, want := range []string{`"temperature":0.7`, `"max_tokens":500`, `"model":"gpt-3.5-turbo"`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("request body missing %s:\n%s", want, gotBody)
		}
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	c := newClient("http://unused", "")

	_, err := c.Complete(context.Background(), "sys", "msg")
	var configErr *domain.ErrConfiguration
	if !errors.As(err, &configErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.UpstreamKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error": {"message": "bad key"}}`, domain.UpstreamBadKey},
		{"quota", http.StatusTooManyRequests, `{"error": {"message": "quota", "code": "insufficient_quota"}}`, domain.UpstreamQuota},
		{"rate limited", http.StatusTooManyRequests, `{"error": {"message": "slow down", "code": "rate_limit_exceeded"}}`, domain.UpstreamRateLimited},
		{"server error", http.StatusInternalServerError, `{}`, domain.UpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newClient(srv.URL, "sk-test")

			_, err := c.Complete(context.Background(), "sys", "msg")
			var upstream *domain.ErrUpstream
			if !errors.As(err, &upstream) {
				t.Fatalf("expected upstream error, got %v", err)
			}
			if upstream.Kind != tt.want {
				t.Errorf("kind = %q, want %q", upstream.Kind, tt.want)
			}
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "sk-test")

	_, err := c.Complete(context.Background(), "sys", "msg")
	var upstream *domain.ErrUpstream
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error for empty choices, got %v", err)
	}
}

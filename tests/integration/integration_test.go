package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/planmoni/assistant-bfa-go/internal/conversation"
	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/handler"
	"github.com/planmoni/assistant-bfa-go/internal/infra/cache"
	"github.com/planmoni/assistant-bfa-go/internal/infra/client"
	"github.com/planmoni/assistant-bfa-go/internal/infra/observability"
	"github.com/planmoni/assistant-bfa-go/internal/infra/openai"
	"github.com/planmoni/assistant-bfa-go/internal/infra/resilience"
	"github.com/planmoni/assistant-bfa-go/internal/infra/supabase"
	"github.com/planmoni/assistant-bfa-go/internal/service"

	"go.uber.org/zap"
)

// newBackend wires real supabase and openai clients against mock servers
// and returns the full router.
func newBackend(t *testing.T, supabaseURL, openaiURL string) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	store := supabase.NewClient(httpClient, supabaseURL, "anon", "service",
		resilience.NewCircuitBreaker("supabase-it"), cfg, logger)
	model := openai.NewClient(httpClient, openaiURL, "sk-test", "gpt-3.5-turbo",
		resilience.NewCircuitBreaker("openai-it"), resilience.NewBulkhead(10), logger)

	svc := service.NewAssistant(store, store, store, model,
		cache.New[string](5*time.Minute), metrics, logger)

	return handler.NewRouter(svc, nil, metrics, 5*time.Second, logger)
}

func newSupabaseMock() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/rest/v1/profiles"):
			w.Write([]byte(`[{"first_name": "Ada", "last_name": "O"}]`))
		case strings.HasPrefix(r.URL.Path, "/rest/v1/payout_plans"):
			w.Write([]byte(`[{"id": "p1", "name": "Rent", "status": "active", "payout_amount": 50000, "frequency": "monthly", "completed_payouts": 2, "duration": 6}]`))
		case strings.HasPrefix(r.URL.Path, "/rest/v1/transactions"):
			w.Write([]byte(`[{"id": "t1", "type": "deposit", "amount": 100000, "status": "completed", "created_at": "2026-08-01T10:30:00Z"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestIntegration_AssistantFullFlow(t *testing.T) {
	supabaseSrv := newSupabaseMock()
	defer supabaseSrv.Close()

	var gotSystemPrompt string
	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		if len(payload.Messages) > 0 {
			gotSystemPrompt = payload.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "You could lock part of your balance.\n` + "```" + `json\n[{\"label\": \"Create Payout Plan\", \"route\": \"/create-payout/amount\"}]\n` + "```" + `"}}],
			"usage": {"prompt_tokens": 300, "completion_tokens": 60, "total_tokens": 360}
		}`))
	}))
	defer openaiSrv.Close()

	router := newBackend(t, supabaseSrv.URL, openaiSrv.URL)

	body, _ := json.Marshal(domain.AssistantRequest{
		Message: "How should I manage my money?",
		UserID:  "user-1",
		FinancialContext: domain.FinancialContext{
			Balance: 300000, LockedBalance: 50000, AvailableBalance: 250000,
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ai-assistant", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var reply domain.AssistantReply
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Response != "You could lock part of your balance." {
		t.Errorf("response = %q", reply.Response)
	}
	if len(reply.Actions) != 1 || reply.Actions[0].Route != "/create-payout/amount" {
		t.Errorf("actions = %+v", reply.Actions)
	}

	// The prompt carries the fetched context.
	for _, want := range []string{"- Name: Ada", "- Rent: ₦50000 monthly, 2/6 completed", "- DEPOSIT: ₦100000 (completed) on 2026-08-01"} {
		if !strings.Contains(gotSystemPrompt, want) {
			t.Errorf("system prompt missing %q:\n%s", want, gotSystemPrompt)
		}
	}
}

func TestIntegration_DegradesWhenStoreDown(t *testing.T) {
	// Supabase answers 500 for everything; the turn still succeeds.
	supabaseSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer supabaseSrv.Close()

	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "Here to help anyway."}}], "usage": {}}`))
	}))
	defer openaiSrv.Close()

	router := newBackend(t, supabaseSrv.URL, openaiSrv.URL)

	body, _ := json.Marshal(domain.AssistantRequest{Message: "hello", UserID: "user-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/ai-assistant", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("store failures must degrade, not abort: got %d. Body: %s", rec.Code, rec.Body.String())
	}
}

func TestIntegration_ProviderRateLimited(t *testing.T) {
	supabaseSrv := newSupabaseMock()
	defer supabaseSrv.Close()

	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "slow down", "code": "rate_limit_exceeded"}}`))
	}))
	defer openaiSrv.Close()

	router := newBackend(t, supabaseSrv.URL, openaiSrv.URL)

	body, _ := json.Marshal(domain.AssistantRequest{Message: "hello", UserID: "user-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/ai-assistant", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var errBody struct {
		Error    string `json:"error"`
		Response string `json:"response"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(errBody.Response, "a lot of requests") {
		t.Errorf("response = %q, want the rate-limit message", errBody.Response)
	}
}

// TestIntegration_SessionAgainstBackend drives the client-side session
// against the real router over HTTP.
func TestIntegration_SessionAgainstBackend(t *testing.T) {
	supabaseSrv := newSupabaseMock()
	defer supabaseSrv.Close()

	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "Spread it across two plans."}}], "usage": {}}`))
	}))
	defer openaiSrv.Close()

	backendSrv := httptest.NewServer(newBackend(t, supabaseSrv.URL, openaiSrv.URL))
	defer backendSrv.Close()

	logger := zap.NewNop()
	caller := client.NewAssistantClient(
		&http.Client{Timeout: 5 * time.Second},
		backendSrv.URL,
		resilience.NewCircuitBreaker("assistant-it"),
		logger,
	)

	session := conversation.NewSession(conversation.Config{
		Identity: staticIdentity{},
		Balances: staticBalances{},
		Backend:  caller,
		Logger:   logger,
	})

	reply, err := session.Send(context.Background(), "what do you suggest for my finances?")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Content != "Spread it across two plans." {
		t.Errorf("reply = %q", reply.Content)
	}
	if session.State() != conversation.StateRendered {
		t.Errorf("state = %q, want rendered", session.State())
	}
}

type staticIdentity struct{}

func (staticIdentity) UserID() string      { return "user-1" }
func (staticIdentity) FirstName() string   { return "Ada" }
func (staticIdentity) AccessToken() string { return "" }

type staticBalances struct{}

func (staticBalances) Balances() domain.Balances {
	return domain.Balances{Balance: 300000, LockedBalance: 50000, AvailableBalance: 250000}
}

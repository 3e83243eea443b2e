// Package supabase provides a client for Supabase PostgREST, used as the
// data backend for user profiles, payout plans and transactions.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
	}
}

// doRequest executes an authenticated GET against Supabase PostgREST.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil // no data
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("supabase returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("supabase: request OK",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// --- Profiles (implements port.ProfileFetcher) ---

// GetProfile fetches the user's display-name profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.Profile
	var notFound *domain.ErrNotFound

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("profiles?select=first_name,last_name&id=eq.%s&limit=1", url.QueryEscape(userID))
			body, err := c.doRequest(ctx, path)
			if err != nil {
				return err
			}

			// An empty result set is a definitive answer. Capture it
			// instead of returning an error so it is neither retried nor
			// counted against the breaker.
			if body == nil || string(body) == "[]" {
				notFound = &domain.ErrNotFound{Resource: "profile", ID: userID}
				return nil
			}

			var profiles []domain.Profile
			if err := json.Unmarshal(body, &profiles); err != nil {
				return fmt.Errorf("failed to decode profile: %w", err)
			}
			if len(profiles) == 0 {
				notFound = &domain.ErrNotFound{Resource: "profile", ID: userID}
				return nil
			}

			profile = &profiles[0]
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if notFound != nil {
		return nil, notFound
	}

	return profile, nil
}

// --- Payout plans (implements port.PlanFetcher) ---

// supabasePlan maps payout_plans table columns to the domain.
type supabasePlan struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	PayoutAmount     float64 `json:"payout_amount"`
	Frequency        string  `json:"frequency"`
	CompletedPayouts int     `json:"completed_payouts"`
	Duration         int     `json:"duration"`
}

// ListPayoutPlans fetches the user's payout plans, most recent first.
func (c *Client) ListPayoutPlans(ctx context.Context, userID string) ([]domain.PayoutPlan, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPayoutPlans")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var plans []domain.PayoutPlan

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("payout_plans?user_id=eq.%s&order=created_at.desc", url.QueryEscape(userID))
			body, err := c.doRequest(ctx, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				plans = []domain.PayoutPlan{}
				return nil
			}

			var rows []supabasePlan
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode payout plans: %w", err)
			}

			plans = make([]domain.PayoutPlan, 0, len(rows))
			for _, r := range rows {
				plans = append(plans, domain.PayoutPlan{
					ID:               r.ID,
					Name:             r.Name,
					Status:           r.Status,
					PayoutAmount:     r.PayoutAmount,
					Frequency:        r.Frequency,
					CompletedPayouts: r.CompletedPayouts,
					Duration:         r.Duration,
				})
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/payout_plans", Err: err}
	}

	return plans, nil
}

// --- Transactions (implements port.TransactionsFetcher) ---

// supabaseTransaction maps transactions table columns.
type supabaseTransaction struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// ListTransactions fetches the user's transactions, most recent first.
func (c *Client) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var transactions []domain.Transaction

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("transactions?user_id=eq.%s&order=created_at.desc&limit=%d", url.QueryEscape(userID), limit)
			body, err := c.doRequest(ctx, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				transactions = []domain.Transaction{}
				return nil
			}

			var rows []supabaseTransaction
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode transactions: %w", err)
			}

			transactions = make([]domain.Transaction, 0, len(rows))
			for _, r := range rows {
				t, _ := time.Parse(time.RFC3339, r.CreatedAt)
				if t.IsZero() {
					t, _ = time.Parse("2006-01-02", r.CreatedAt)
				}
				transactions = append(transactions, domain.Transaction{
					ID:        r.ID,
					Type:      r.Type,
					Amount:    r.Amount,
					Status:    r.Status,
					CreatedAt: t,
				})
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	return transactions, nil
}

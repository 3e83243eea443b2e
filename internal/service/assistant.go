package service

import (
	"context"
	"fmt"
	"time"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/infra/observability"
	"github.com/planmoni/assistant-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/assistant")

// transactionFetchLimit is how many transactions are pulled from the
// store per turn; only the first promptTransactionLimit reach the prompt.
const transactionFetchLimit = 10

// Assistant orchestrates the per-turn context fetches and the
// language-model call for POST /api/ai-assistant.
type Assistant struct {
	profileClient      port.ProfileFetcher
	planClient         port.PlanFetcher
	transactionsClient port.TransactionsFetcher
	completer          port.Completer
	profileCache       port.Cache[string]
	metrics            *observability.Metrics
	logger             *zap.Logger
}

// NewAssistant creates the assistant service with all dependencies injected.
func NewAssistant(
	profile port.ProfileFetcher,
	plans port.PlanFetcher,
	transactions port.TransactionsFetcher,
	completer port.Completer,
	profileCache port.Cache[string],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Assistant {
	return &Assistant{
		profileClient:      profile,
		planClient:         plans,
		transactionsClient: transactions,
		completer:          completer,
		profileCache:       profileCache,
		metrics:            metrics,
		logger:             logger,
	}
}

// Respond runs one assistant turn: fetch the user's name, plans and
// recent transactions concurrently, assemble the system prompt, call the
// model and parse any embedded actions out of its reply.
//
// The three data fetches degrade independently: a failure is logged and
// replaced with an empty/default value so the prompt is assembled from
// whatever partial data is available. Only validation and provider
// failures abort the turn.
func (a *Assistant) Respond(ctx context.Context, req *domain.AssistantRequest) (*domain.AssistantReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Assistant.Respond")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	if req.Message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "required"}
	}
	if req.UserID == "" {
		return nil, &domain.ErrUnauthorized{Message: "user id is required"}
	}

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("assistant", time.Since(start))
	}()

	// --- Step 1: fetch name + plans + transactions concurrently ---
	var (
		userName     string
		plans        []domain.PayoutPlan
		transactions []domain.Transaction
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		userName = a.fetchUserName(gCtx, req.UserID)
		return nil
	})

	g.Go(func() error {
		p, err := a.planClient.ListPayoutPlans(gCtx, req.UserID)
		if err != nil {
			a.logger.Warn("failed to fetch payout plans, continuing without",
				zap.String("user_id", req.UserID),
				zap.Error(err),
			)
			a.metrics.IncrExternalError("plans")
			return nil
		}
		plans = p
		return nil
	})

	g.Go(func() error {
		t, err := a.transactionsClient.ListTransactions(gCtx, req.UserID, transactionFetchLimit)
		if err != nil {
			a.logger.Warn("failed to fetch transactions, continuing without",
				zap.String("user_id", req.UserID),
				zap.Error(err),
			)
			a.metrics.IncrExternalError("transactions")
			return nil
		}
		transactions = t
		return nil
	})

	// Fetch errors never propagate; partial data beats total failure.
	_ = g.Wait()

	// --- Step 2: call the model ---
	systemPrompt := buildSystemPrompt(userName, req.FinancialContext, plans, transactions)

	llmStart := time.Now()
	completion, err := a.completer.Complete(ctx, systemPrompt, req.Message)
	a.metrics.RecordRequestDuration("llm", time.Since(llmStart))
	if err != nil {
		a.logger.Error("model call failed",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		a.metrics.IncrExternalError("llm")
		a.metrics.IncrRequest("error")
		return nil, fmt.Errorf("model call: %w", err)
	}

	a.metrics.RecordTokens(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	a.metrics.IncrRequest("success")

	// --- Step 3: lift embedded actions out of the reply text ---
	text, actions := ParseActions(completion.Text)
	if len(actions) > 0 {
		span.SetAttributes(attribute.Int("actions.count", len(actions)))
	}

	return &domain.AssistantReply{Response: text, Actions: actions}, nil
}

// fetchUserName resolves the user's first name through the profile cache,
// falling back to "User" when the profile is unavailable.
func (a *Assistant) fetchUserName(ctx context.Context, userID string) string {
	cacheKey := fmt.Sprintf("profile-name:%s", userID)
	if name, ok := a.profileCache.Get(cacheKey); ok {
		a.metrics.IncrCacheHit("profile")
		return name
	}
	a.metrics.IncrCacheMiss("profile")

	profile, err := a.profileClient.GetProfile(ctx, userID)
	if err != nil || profile == nil || profile.FirstName == "" {
		if err != nil {
			a.logger.Warn("failed to fetch profile, continuing without",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			a.metrics.IncrExternalError("profile")
		}
		return "User"
	}

	a.profileCache.Set(cacheKey, profile.FirstName)
	return profile.FirstName
}

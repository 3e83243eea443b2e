// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
)

// ProfileFetcher retrieves the user's display-name profile.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// PlanFetcher retrieves the user's payout plans, most recent first.
type PlanFetcher interface {
	ListPayoutPlans(ctx context.Context, userID string) ([]domain.PayoutPlan, error)
}

// TransactionsFetcher retrieves the user's transactions, most recent first.
type TransactionsFetcher interface {
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}

// Completer invokes the language-model provider with a system prompt and
// the user's message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (*domain.Completion, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// TokenVerifier validates a bearer credential and returns the user id it
// was issued for.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// ============================================================
// Client-side ports (conversation session collaborators)
// ============================================================

// IdentitySource exposes the current session's user identity.
type IdentitySource interface {
	UserID() string
	FirstName() string
	AccessToken() string
}

// BalanceSource exposes the user's current balance snapshot.
type BalanceSource interface {
	Balances() domain.Balances
}

// PlanSource exposes the user's payout plans for context assembly.
type PlanSource interface {
	PayoutPlans() []domain.PayoutPlan
}

// TransactionSource exposes the user's transactions, most recent first.
type TransactionSource interface {
	Transactions() []domain.Transaction
}

// AssistantCaller sends a message plus financial context to the backend
// assistant endpoint.
type AssistantCaller interface {
	Ask(ctx context.Context, req *domain.AssistantRequest, bearer string) (*domain.AssistantReply, error)
}

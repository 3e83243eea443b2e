// Package domain defines the core business entities for the Planmoni
// assistant. These models are independent of external services and
// represent the canonical data structures used throughout the BFA.
package domain

import "time"

// ============================================================
// Conversation
// ============================================================

// MessageSender identifies who authored a message.
type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "assistant"
)

// MessageType distinguishes how a message should be rendered.
type MessageType string

const (
	MessageText    MessageType = "text"
	MessagePlan    MessageType = "plan"
	MessageInsight MessageType = "insight"
)

// Message is a single entry in a conversation log. Messages are immutable
// once created; the log is append-only and insertion order is display order.
type Message struct {
	ID        string           `json:"id"`
	Sender    MessageSender    `json:"sender"`
	Type      MessageType      `json:"type"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata carries the structured payload attached to plan and
// insight messages, and any actions suggested by the assistant.
type MessageMetadata struct {
	Plans   *PlanBundle       `json:"plans,omitempty"`
	Insight *InsightReport    `json:"insight,omitempty"`
	Actions []AssistantAction `json:"actions,omitempty"`
}

// ============================================================
// Plan synthesis
// ============================================================

// Cadence is the payout frequency of a plan proposal.
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
)

// PlanProposal is one selectable savings-plan option. Display-only until
// the user chooses it.
type PlanProposal struct {
	Title       string  `json:"title"`
	Cadence     Cadence `json:"frequency"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// PlanBundle groups the three proposals generated for one
// (targetAmount, timeframeMonths) pair.
type PlanBundle struct {
	TargetAmount    float64        `json:"targetAmount"`
	TimeframeMonths int            `json:"timeframe"`
	Proposals       []PlanProposal `json:"plans"`
}

// PlanSetup is the handoff to the external plan-creation flow when the
// user selects a proposal. Duration is approximated as 4 weeks per month.
type PlanSetup struct {
	Amount        float64 `json:"amount"`
	Frequency     Cadence `json:"frequency"`
	DurationWeeks int     `json:"duration"`
}

// ============================================================
// Financial context
// ============================================================

// ContextTransaction is the compact transaction shape included in the
// per-turn financial context snapshot.
type ContextTransaction struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
	Date   string  `json:"date"`
}

// FinancialContext is a read-only snapshot of the user's balances and
// plan/transaction summary, rebuilt fresh on every user message.
type FinancialContext struct {
	Balance            float64              `json:"balance"`
	LockedBalance      float64              `json:"lockedBalance"`
	AvailableBalance   float64              `json:"availableBalance"`
	ActivePlans        int                  `json:"activePlans"`
	TotalPlans         int                  `json:"totalPlans"`
	RecentTransactions []ContextTransaction `json:"recentTransactions"`
}

// ============================================================
// Assistant request/response contract
// ============================================================

// AssistantAction is a structured navigation suggestion optionally
// embedded in an assistant reply.
type AssistantAction struct {
	Label  string            `json:"label"`
	Route  string            `json:"route"`
	Params map[string]string `json:"params,omitempty"`
}

// AssistantRequest is the body of POST /api/ai-assistant.
type AssistantRequest struct {
	Message          string           `json:"message"`
	FinancialContext FinancialContext `json:"financialContext"`
	UserID           string           `json:"userId"`
}

// AssistantReply is the success response of POST /api/ai-assistant.
type AssistantReply struct {
	Response string            `json:"response"`
	Actions  []AssistantAction `json:"actions,omitempty"`
}

// TokenUsage reports LLM token consumption for one completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the raw result of one language-model call.
type Completion struct {
	Text  string
	Usage TokenUsage
}

// ============================================================
// Data-store records
// ============================================================

// Profile holds the display-name fields fetched for prompt assembly.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PayoutPlan is a user's payout plan as stored in the plans table.
type PayoutPlan struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	PayoutAmount     float64 `json:"payout_amount"`
	Frequency        string  `json:"frequency"`
	CompletedPayouts int     `json:"completed_payouts"`
	Duration         int     `json:"duration"`
}

// Transaction is a wallet transaction ordered by recency.
type Transaction struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Balances is the three-figure balance snapshot from the balance provider.
type Balances struct {
	Balance          float64 `json:"balance"`
	LockedBalance    float64 `json:"locked_balance"`
	AvailableBalance float64 `json:"available_balance"`
}

// ============================================================
// Insights
// ============================================================

// InsightCard is one entry of the fixed-shape insight report.
type InsightCard struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Change      string `json:"change"`
	Description string `json:"description"`
}

// InsightReport is the three-card report plus recommendations produced by
// the insight generator. The shape is a stable rendering contract; a real
// analytics implementation must preserve it.
type InsightReport struct {
	Insights        []InsightCard `json:"insights"`
	Recommendations []string      `json:"recommendations"`
}

// AssistantMetrics is the snapshot served by GET /v1/metrics/assistant.
type AssistantMetrics struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUsd    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}

// Package conversation owns the client-side chat session: an append-only
// message log, the per-turn request state machine, and the routing of
// user messages to local plan/insight generation or the backend
// assistant endpoint.
package conversation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/insight"
	"github.com/planmoni/assistant-bfa-go/internal/nlp"
	"github.com/planmoni/assistant-bfa-go/internal/planner"
	"github.com/planmoni/assistant-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the per-turn request state of a session.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
	StateRendered         State = "rendered"
	StateErrored          State = "errored"
)

// Defaults applied only here, at the response-generation boundary.
// The extractors themselves never substitute them.
const (
	defaultTargetAmount    = 500_000
	defaultTimeframeMonths = 6
)

// contextTransactionLimit caps the transactions included in the per-turn
// financial context snapshot.
const contextTransactionLimit = 5

// defaultRequestTimeout bounds a backend turn; expiry surfaces as an
// errored assistant message like any other failure.
const defaultRequestTimeout = 30 * time.Second

// fallbackMessage is shown when the backend call fails for any reason.
const fallbackMessage = "I apologize, but I encountered an issue processing your request. Please try again later."

// SuggestedPrompts are shown to the user before the first message.
var SuggestedPrompts = []string{
	"I want to save ₦500,000 for rent by September",
	"I earn 200k monthly. Can you help me budget?",
	"How can I improve my savings habits?",
	"Create a plan to save ₦1M in 6 months",
	"Analyze my spending patterns",
	"What's the best way to save for emergencies?",
}

// genericResponses backs the local responder used when no backend is
// configured.
var genericResponses = []string{
	"I'd be happy to help with that. Could you provide more details about your financial goals?",
	"That's a great question. Based on your current financial situation, I'd recommend focusing on building an emergency fund first.",
	"I understand your concern. Many people struggle with similar financial challenges. Let's work on a plan together.",
	"Based on your wallet activity, I notice you tend to save more at the beginning of the month. That's a good habit to maintain!",
	"Have you considered setting up automatic transfers to your savings? This can help make saving more consistent.",
}

// Config carries the session's collaborators. Backend may be nil, in
// which case generic messages get a local canned response.
type Config struct {
	Identity     port.IdentitySource
	Balances     port.BalanceSource
	Plans        port.PlanSource
	Transactions port.TransactionSource
	Backend      port.AssistantCaller
	Logger       *zap.Logger

	// Now and Pick are injectable for tests; nil selects real time and
	// uniform random choice.
	Now  func() time.Time
	Pick func(n int) int

	// RequestTimeout bounds a backend turn; zero selects the default.
	RequestTimeout time.Duration
}

// Session is one conversation. Each session owns its own log, so
// concurrent sessions (e.g. multiple tabs) do not interfere.
type Session struct {
	id           string
	identity     port.IdentitySource
	balances     port.BalanceSource
	plans        port.PlanSource
	transactions port.TransactionSource
	backend      port.AssistantCaller
	logger       *zap.Logger
	now          func() time.Time
	pick         func(n int) int
	timeout      time.Duration

	mu    sync.Mutex
	state State
	log   []domain.Message
}

// NewSession creates a session and appends the welcome message.
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Pick == nil {
		cfg.Pick = rand.Intn
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	s := &Session{
		id:           uuid.New().String(),
		identity:     cfg.Identity,
		balances:     cfg.Balances,
		plans:        cfg.Plans,
		transactions: cfg.Transactions,
		backend:      cfg.Backend,
		logger:       cfg.Logger,
		now:          cfg.Now,
		pick:         cfg.Pick,
		timeout:      cfg.RequestTimeout,
		state:        StateIdle,
	}

	name := "there"
	if s.identity != nil && s.identity.FirstName() != "" {
		name = s.identity.FirstName()
	}
	s.log = append(s.log, s.newMessage(
		domain.SenderAssistant,
		domain.MessageText,
		fmt.Sprintf("Hi %s! I'm your financial assistant. I can help you create savings plans, analyze your spending, and provide personalized financial advice. How can I help you today?", name),
		nil,
	))

	return s
}

// ID returns the session's conversation id.
func (s *Session) ID() string { return s.id }

// State returns the current per-turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a copy of the conversation log in display order.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.log))
	copy(out, s.log)
	return out
}

// Send submits one user message and returns the assistant's reply.
//
// Empty text and submission while a response is in flight are rejected
// with an error before anything is appended. Every other failure
// (network, HTTP status, provider) surfaces as an assistant-authored
// chat message, never as a returned error: once a turn is accepted the
// caller always gets a reply message back.
//
// A new message does not cancel an in-flight one; instead the session
// rejects it (request fencing by exclusion), which keeps the log ordered
// by submission.
func (s *Session) Send(ctx context.Context, text string) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, &domain.ErrValidation{Field: "message", Message: "required"}
	}

	s.mu.Lock()
	if s.state == StateAwaitingResponse {
		s.mu.Unlock()
		return domain.Message{}, &domain.ErrBusy{}
	}
	s.state = StateAwaitingResponse
	s.log = append(s.log, s.newMessage(domain.SenderUser, domain.MessageText, text, nil))
	s.mu.Unlock()

	var (
		reply   domain.Message
		errored bool
	)

	switch nlp.Classify(text) {
	case nlp.IntentPlan:
		reply = s.planReply(text)
	case nlp.IntentInsight:
		reply = s.insightReply()
	default:
		reply, errored = s.genericReply(ctx, text)
	}

	s.mu.Lock()
	s.log = append(s.log, reply)
	if errored {
		s.state = StateErrored
	} else {
		s.state = StateRendered
	}
	s.mu.Unlock()

	return reply, nil
}

// SelectProposal hands off the chosen cadence of a plan message to the
// plan-creation flow.
func (s *Session) SelectProposal(messageID string, cadence domain.Cadence) (domain.PlanSetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.log {
		if m.ID == messageID {
			if m.Metadata == nil || m.Metadata.Plans == nil {
				return domain.PlanSetup{}, &domain.ErrValidation{Field: "messageId", Message: "message carries no plan proposals"}
			}
			return planner.Setup(*m.Metadata.Plans, cadence)
		}
	}
	return domain.PlanSetup{}, &domain.ErrNotFound{Resource: "message", ID: messageID}
}

func (s *Session) planReply(text string) domain.Message {
	targetAmount, ok := nlp.ExtractAmount(text)
	if !ok {
		targetAmount = defaultTargetAmount
	}
	months, ok := nlp.ExtractTimeframe(text, s.now())
	if !ok {
		months = defaultTimeframeMonths
	}

	bundle := planner.Synthesize(targetAmount, months)

	content := fmt.Sprintf(
		"Based on your goal to save ₦%s over %d months, I've created these personalized plans for you:",
		planner.FormatAmount(targetAmount), months,
	)
	return s.newMessage(domain.SenderAssistant, domain.MessagePlan, content, &domain.MessageMetadata{Plans: &bundle})
}

func (s *Session) insightReply() domain.Message {
	report := insight.BuildReport(s.snapshot())
	return s.newMessage(
		domain.SenderAssistant,
		domain.MessageInsight,
		"I've analyzed your financial data and here are some insights:",
		&domain.MessageMetadata{Insight: &report},
	)
}

func (s *Session) genericReply(ctx context.Context, text string) (domain.Message, bool) {
	if s.backend == nil {
		content := genericResponses[s.pick(len(genericResponses))]
		return s.newMessage(domain.SenderAssistant, domain.MessageText, content, nil), false
	}

	req := &domain.AssistantRequest{
		Message:          text,
		FinancialContext: s.snapshot(),
	}
	var bearer string
	if s.identity != nil {
		req.UserID = s.identity.UserID()
		bearer = s.identity.AccessToken()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.backend.Ask(ctx, req, bearer)
	if err != nil {
		s.logger.Error("assistant call failed",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
		return s.newMessage(domain.SenderAssistant, domain.MessageText, fallbackMessage, nil), true
	}

	var meta *domain.MessageMetadata
	if len(reply.Actions) > 0 {
		meta = &domain.MessageMetadata{Actions: reply.Actions}
	}
	return s.newMessage(domain.SenderAssistant, domain.MessageText, reply.Response, meta), false
}

// snapshot rebuilds the financial context fresh; nothing is cached
// between turns.
func (s *Session) snapshot() domain.FinancialContext {
	var fc domain.FinancialContext

	if s.balances != nil {
		b := s.balances.Balances()
		fc.Balance = b.Balance
		fc.LockedBalance = b.LockedBalance
		fc.AvailableBalance = b.AvailableBalance
	}
	if s.plans != nil {
		for _, p := range s.plans.PayoutPlans() {
			fc.TotalPlans++
			if p.Status == "active" {
				fc.ActivePlans++
			}
		}
	}
	if s.transactions != nil {
		for _, t := range s.transactions.Transactions() {
			if len(fc.RecentTransactions) == contextTransactionLimit {
				break
			}
			fc.RecentTransactions = append(fc.RecentTransactions, domain.ContextTransaction{
				Type:   t.Type,
				Amount: t.Amount,
				Status: t.Status,
				Date:   t.CreatedAt.Format("2006-01-02"),
			})
		}
	}

	return fc
}

func (s *Session) newMessage(sender domain.MessageSender, typ domain.MessageType, content string, meta *domain.MessageMetadata) domain.Message {
	return domain.Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Type:      typ,
		Content:   content,
		Timestamp: s.now(),
		Metadata:  meta,
	}
}

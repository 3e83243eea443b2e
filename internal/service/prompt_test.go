package service

import (
	"strings"
	"testing"
	"time"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
)

func TestBuildSystemPrompt(t *testing.T) {
	fc := domain.FinancialContext{
		Balance:          300000,
		LockedBalance:    50000,
		AvailableBalance: 250000,
	}
	plans := []domain.PayoutPlan{
		{Name: "Rent", Status: "active", PayoutAmount: 50000, Frequency: "monthly", CompletedPayouts: 2, Duration: 6},
		{Name: "Old Goal", Status: "completed", PayoutAmount: 10000, Frequency: "weekly", CompletedPayouts: 12, Duration: 12},
	}
	transactions := []domain.Transaction{
		{Type: "deposit", Amount: 100000, Status: "completed", CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{Type: "payout", Amount: 50000, Status: "pending", CreatedAt: time.Date(2026, 7, 28, 0, 0, 0, 0, time.UTC)},
	}

	prompt := buildSystemPrompt("Ada", fc, plans, transactions)

	wants := []string{
		"- Name: Ada\n",
		"- Available Balance: ₦250,000\n",
		"- Locked Balance: ₦50,000\n",
		"- Total Balance: ₦300,000\n",
		"- Active Payout Plans: 1\n",
		"- Total Payout Plans: 2\n",
		"- Rent: ₦50000 monthly, 2/6 completed",
		"- DEPOSIT: ₦100000 (completed) on 2026-08-01",
		"- PAYOUT: ₦50000 (pending) on 2026-07-28",
		"IMPORTANT GUIDELINES:",
		"```json",
	}
	for _, want := range wants {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n---\n%s", want, prompt)
		}
	}

	// Completed plans are excluded from the plan lines.
	if strings.Contains(prompt, "Old Goal") {
		t.Error("prompt must only list active plans")
	}
}

func TestBuildSystemPromptTransactionCap(t *testing.T) {
	var transactions []domain.Transaction
	for i := 0; i < 10; i++ {
		transactions = append(transactions, domain.Transaction{
			Type: "deposit", Amount: float64(i + 1), Status: "completed",
			CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		})
	}

	prompt := buildSystemPrompt("Ada", domain.FinancialContext{}, nil, transactions)

	if got := strings.Count(prompt, "- DEPOSIT:"); got != 5 {
		t.Errorf("prompt embeds %d transactions, want 5", got)
	}
}

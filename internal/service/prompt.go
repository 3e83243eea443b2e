package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/planner"
)

// promptTransactionLimit caps the transactions embedded in the prompt.
const promptTransactionLimit = 5

// buildSystemPrompt assembles the per-turn system prompt: user name, the
// three balance figures, plan counts, one line per active plan and one
// line per recent transaction, followed by the behavioural guidelines and
// the action-block instructions.
func buildSystemPrompt(userName string, fc domain.FinancialContext, plans []domain.PayoutPlan, transactions []domain.Transaction) string {
	active := make([]domain.PayoutPlan, 0, len(plans))
	for _, p := range plans {
		if p.Status == "active" {
			active = append(active, p)
		}
	}

	var planLines []string
	for _, p := range active {
		planLines = append(planLines, fmt.Sprintf("- %s: ₦%s %s, %d/%d completed",
			p.Name, formatNumber(p.PayoutAmount), p.Frequency, p.CompletedPayouts, p.Duration))
	}

	var txLines []string
	for i, t := range transactions {
		if i == promptTransactionLimit {
			break
		}
		txLines = append(txLines, fmt.Sprintf("- %s: ₦%s (%s) on %s",
			strings.ToUpper(t.Type), formatNumber(t.Amount), t.Status, t.CreatedAt.Format("2006-01-02")))
	}

	var b strings.Builder
	b.WriteString("You are a helpful and knowledgeable financial assistant for Planmoni, a financial app that helps users manage their finances through automated payout plans.\n\n")

	b.WriteString("USER CONTEXT:\n")
	fmt.Fprintf(&b, "- Name: %s\n", userName)
	fmt.Fprintf(&b, "- Available Balance: ₦%s\n", planner.FormatAmount(fc.AvailableBalance))
	fmt.Fprintf(&b, "- Locked Balance: ₦%s\n", planner.FormatAmount(fc.LockedBalance))
	fmt.Fprintf(&b, "- Total Balance: ₦%s\n", planner.FormatAmount(fc.Balance))
	fmt.Fprintf(&b, "- Active Payout Plans: %d\n", len(active))
	fmt.Fprintf(&b, "- Total Payout Plans: %d\n\n", len(plans))

	b.WriteString("PAYOUT PLANS:\n")
	b.WriteString(strings.Join(planLines, "\n"))
	b.WriteString("\n\n")

	b.WriteString("RECENT TRANSACTIONS:\n")
	b.WriteString(strings.Join(txLines, "\n"))
	b.WriteString("\n\n")

	b.WriteString(`IMPORTANT GUIDELINES:
1. Be concise, practical, and personalized in your advice.
2. Focus on helping the user manage their finances better using Planmoni's features.
3. When appropriate, suggest specific actions the user can take in the app.
4. If you recommend creating a payout plan, suggest they go to the Home tab and tap "Plan".
5. If you recommend adding funds, suggest they go to the Home tab and tap "Deposit".
6. Always be respectful of the user's financial situation.
7. Don't make up information - only use the context provided.
8. If you don't know something, say so honestly.

For certain actions, you can provide actionable buttons by including a JSON array in your response like this:
` + "```json" + `
[
  {
    "label": "Create Payout Plan",
    "route": "/create-payout/amount"
  },
  {
    "label": "Add Funds",
    "route": "/add-funds"
  }
]
` + "```" + `

Only include these actions when they're directly relevant to your response.
`)

	return b.String()
}

// formatNumber renders a raw store amount without forcing decimals.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

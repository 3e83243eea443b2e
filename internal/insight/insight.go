// Package insight produces the fixed-shape spending report shown for
// insight-intent messages.
//
// The current content is a placeholder surface: the three-card report and
// the recommendations list are a stable rendering contract, so a future
// implementation that aggregates the transaction stream can drop in
// without touching callers.
package insight

import (
	"fmt"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/planner"
)

// emergencyFundShare is the fraction of the available balance reported as
// the emergency-fund estimate.
const emergencyFundShare = 0.2

// BuildReport assembles the insight report for the given financial
// context. Exactly three cards, always in the same order.
func BuildReport(fc domain.FinancialContext) domain.InsightReport {
	emergencyFund := fc.AvailableBalance * emergencyFundShare

	return domain.InsightReport{
		Insights: []domain.InsightCard{
			{
				Title:       "Spending Pattern",
				Value:       "Inconsistent",
				Change:      "-15%",
				Description: "Your spending tends to increase in the third week of each month.",
			},
			{
				Title:       "Savings Rate",
				Value:       "18%",
				Change:      "+3%",
				Description: "You're saving more than last month, great job!",
			},
			{
				Title:       "Emergency Fund",
				Value:       fmt.Sprintf("₦%s", planner.FormatAmount(emergencyFund)),
				Change:      "2 months",
				Description: "Your emergency fund covers about 2 months of expenses.",
			},
		},
		Recommendations: []string{
			"Try switching to a bi-weekly payout schedule to better align with your spending patterns",
			"Consider increasing your emergency fund to cover 3-6 months of expenses",
			"Setting up automatic transfers can help maintain consistent savings",
		},
	}
}

package insight_test

import (
	"testing"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/insight"
)

func TestBuildReportShape(t *testing.T) {
	report := insight.BuildReport(domain.FinancialContext{
		Balance:          300000,
		LockedBalance:    50000,
		AvailableBalance: 250000,
	})

	if len(report.Insights) != 3 {
		t.Fatalf("expected 3 insight cards, got %d", len(report.Insights))
	}
	if len(report.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(report.Recommendations))
	}

	titles := []string{"Spending Pattern", "Savings Rate", "Emergency Fund"}
	for i, want := range titles {
		if report.Insights[i].Title != want {
			t.Errorf("card %d title = %q, want %q", i, report.Insights[i].Title, want)
		}
	}
}

func TestBuildReportEmergencyFund(t *testing.T) {
	report := insight.BuildReport(domain.FinancialContext{AvailableBalance: 250000})

	card := report.Insights[2]
	if card.Value != "₦50,000" {
		t.Errorf("emergency fund = %q, want ₦50,000 (20%% of available balance)", card.Value)
	}
}

func TestBuildReportZeroBalance(t *testing.T) {
	report := insight.BuildReport(domain.FinancialContext{})

	if report.Insights[2].Value != "₦0" {
		t.Errorf("emergency fund on empty context = %q, want ₦0", report.Insights[2].Value)
	}
}

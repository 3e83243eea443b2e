// Package planner turns a savings goal into three selectable payout-plan
// proposals, one per cadence.
package planner

import (
	"fmt"
	"math"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
)

// weeksPerMonth is the average used to derive the weekly cadence amount.
const weeksPerMonth = 4.33

// Synthesize computes the three proposals for a goal of targetAmount over
// timeframeMonths. All per-cadence amounts round up so a user who follows
// the plan exactly reaches or slightly exceeds the goal, never falls short.
func Synthesize(targetAmount float64, timeframeMonths int) domain.PlanBundle {
	monthly := math.Ceil(targetAmount / float64(timeframeMonths))
	weekly := math.Ceil(monthly / weeksPerMonth)
	biweekly := math.Ceil(monthly / 2)

	return domain.PlanBundle{
		TargetAmount:    targetAmount,
		TimeframeMonths: timeframeMonths,
		Proposals: []domain.PlanProposal{
			{
				Title:       "Weekly Plan",
				Cadence:     domain.CadenceWeekly,
				Amount:      weekly,
				Description: fmt.Sprintf("₦%s every week for %d months", FormatAmount(weekly), timeframeMonths),
			},
			{
				Title:       "Bi-weekly Plan",
				Cadence:     domain.CadenceBiweekly,
				Amount:      biweekly,
				Description: fmt.Sprintf("₦%s every two weeks for %d months", FormatAmount(biweekly), timeframeMonths),
			},
			{
				Title:       "Monthly Plan",
				Cadence:     domain.CadenceMonthly,
				Amount:      monthly,
				Description: fmt.Sprintf("₦%s every month for %d months", FormatAmount(monthly), timeframeMonths),
			},
		},
	}
}

// Setup builds the handoff to the plan-creation flow for the chosen
// cadence. Duration is approximated as 4 weeks per month, not
// calendar-exact.
func Setup(bundle domain.PlanBundle, cadence domain.Cadence) (domain.PlanSetup, error) {
	for _, p := range bundle.Proposals {
		if p.Cadence == cadence {
			return domain.PlanSetup{
				Amount:        bundle.TargetAmount,
				Frequency:     cadence,
				DurationWeeks: bundle.TimeframeMonths * 4,
			}, nil
		}
	}
	return domain.PlanSetup{}, fmt.Errorf("no proposal with cadence %q", cadence)
}

// FormatAmount renders a number with thousands separators, keeping up to
// two decimal places when the value is fractional.
func FormatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	// Round to cents up front so a fraction like .999 carries into the
	// integer part instead of truncating.
	v = math.Round(v*100) / 100

	intPart := int64(v)
	frac := v - float64(intPart)

	s := fmt.Sprintf("%d", intPart)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	result := string(out)
	if frac > 1e-9 {
		result += fmt.Sprintf("%.2f", frac)[1:]
	}
	if neg {
		result = "-" + result
	}
	return result
}

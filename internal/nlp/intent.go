// Package nlp contains the rule-based extraction over raw user messages:
// intent classification, amount extraction and timeframe extraction.
// Everything here is a pure function of its inputs.
package nlp

import "strings"

// Intent is the coarse category of a user message.
type Intent string

const (
	IntentPlan    Intent = "plan"
	IntentInsight Intent = "insight"
	IntentGeneric Intent = "generic"
)

// rule pairs a predicate with the intent it selects. Rules are evaluated
// in priority order; the first match wins.
type rule struct {
	match  func(text string) bool
	intent Intent
}

func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}

var intentRules = []rule{
	{containsAny("save", "plan", "budget", "pay myself"), IntentPlan},
	{func(text string) bool {
		return strings.Contains(text, "earn") &&
			(strings.Contains(text, "monthly") || strings.Contains(text, "weekly"))
	}, IntentPlan},
	{containsAny("analyze", "pattern", "spending", "habits", "improve"), IntentInsight},
}

// Classify returns the intent of a user message. Matching is
// case-insensitive substring matching over the full text.
func Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, r := range intentRules {
		if r.match(lower) {
			return r.intent
		}
	}
	return IntentGeneric
}

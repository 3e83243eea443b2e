package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	monthCountPattern = regexp.MustCompile(`(?i)(\d+)\s*months?`)
	yearCountPattern  = regexp.MustCompile(`(?i)(\d+)\s*years?`)
)

// monthNames is iterated in calendar order; when a message mentions more
// than one month name, the earliest in calendar order wins.
var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// ExtractTimeframe resolves a timeframe in months from a message.
// Resolution order: "<N> month(s)", then "<N> year(s)", then an English
// month name meaning its next future occurrence relative to now (a name
// matching the current month means next year, i.e. 12 months out).
// Returns (0, false) when nothing matches; absence is never zero.
func ExtractTimeframe(message string, now time.Time) (int, bool) {
	if m := monthCountPattern.FindStringSubmatch(message); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n, true
		}
	}

	if m := yearCountPattern.FindStringSubmatch(message); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n * 12, true
		}
	}

	lower := strings.ToLower(message)
	currentMonth := int(now.Month()) - 1
	for i, name := range monthNames {
		if strings.Contains(lower, name) {
			diff := i - currentMonth
			if diff <= 0 {
				diff += 12 // target is next year
			}
			return diff, true
		}
	}

	return 0, false
}

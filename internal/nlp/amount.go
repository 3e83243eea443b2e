package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches an optional naira symbol, digits (optionally
// comma-grouped in runs of three) and an optional k/m magnitude suffix.
// The first alternative is tried first, so "1234" matches as "123".
// Known limitation of the original pattern, kept as-is.
var amountPattern = regexp.MustCompile(`₦?(\d{1,3}(,\d{3})*|\d+)([kKmM])?`)

// ExtractAmount finds the first monetary amount mentioned in a message.
// It returns (0, false) when no numeric pattern matches; absence is never
// reported as zero. Later numeric mentions are ignored.
func ExtractAmount(message string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[3]) {
	case "k":
		amount *= 1_000
	case "m":
		amount *= 1_000_000
	}

	if amount <= 0 {
		return 0, false
	}
	return amount, true
}

package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
)

// actionBlockPattern matches the fenced ```json block the model may embed
// to suggest actionable buttons.
var actionBlockPattern = regexp.MustCompile("(?s)```json\n(.*?)\n```")

// ParseActions extracts the optional action array from a model reply and
// strips the block from the displayed text. A malformed block is
// swallowed: the raw text is returned unmodified with no actions.
func ParseActions(reply string) (string, []domain.AssistantAction) {
	m := actionBlockPattern.FindStringSubmatch(reply)
	if m == nil {
		return reply, nil
	}

	var actions []domain.AssistantAction
	if err := json.Unmarshal([]byte(m[1]), &actions); err != nil {
		return reply, nil
	}

	clean := strings.TrimSpace(actionBlockPattern.ReplaceAllString(reply, ""))
	return clean, actions
}

package service_test

import (
	"testing"

	"github.com/planmoni/assistant-bfa-go/internal/service"
)

func TestParseActions(t *testing.T) {
	reply := "Consider a payout plan.\n```json\n[\n  {\"label\": \"Create Payout Plan\", \"route\": \"/create-payout/amount\"},\n  {\"label\": \"Add Funds\", \"route\": \"/add-funds\"}\n]\n```\nLet me know if you need more."

	text, actions := service.ParseActions(reply)

	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Label != "Create Payout Plan" || actions[0].Route != "/create-payout/amount" {
		t.Errorf("first action = %+v", actions[0])
	}
	if want := "Consider a payout plan.\nLet me know if you need more."; text != want {
		t.Errorf("clean text = %q, want %q", text, want)
	}
}

func TestParseActionsParams(t *testing.T) {
	reply := "```json\n[{\"label\": \"Plan\", \"route\": \"/create-payout/amount\", \"params\": {\"amount\": \"500000\"}}]\n```"

	_, actions := service.ParseActions(reply)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if actions[0].Params["amount"] != "500000" {
		t.Errorf("params = %+v", actions[0].Params)
	}
}

func TestParseActionsAbsent(t *testing.T) {
	text, actions := service.ParseActions("Just plain advice, no buttons.")
	if actions != nil {
		t.Errorf("expected nil actions, got %+v", actions)
	}
	if text != "Just plain advice, no buttons." {
		t.Errorf("text = %q", text)
	}
}

func TestParseActionsMalformed(t *testing.T) {
	reply := "Text before.\n```json\nnot json at all\n```"

	text, actions := service.ParseActions(reply)
	if actions != nil {
		t.Errorf("malformed block must yield no actions, got %+v", actions)
	}
	if text != reply {
		t.Errorf("malformed block must leave the raw text intact, got %q", text)
	}
}

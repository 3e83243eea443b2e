package nlp_test

import (
	"testing"

	"github.com/planmoni/assistant-bfa-go/internal/nlp"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    float64
		ok      bool
	}{
		{"currency with commas", "I want to save ₦120,000 this year", 120000, true},
		{"k suffix", "Put aside 120k for me", 120000, true},
		{"uppercase K", "about 50K should do", 50000, true},
		{"m suffix", "My target is 2m", 2000000, true},
		{"uppercase M", "I need ₦1M", 1000000, true},
		{"plain digits", "save 500 weekly", 500, true},
		{"comma grouped millions", "₦1,000,000 in a year", 1000000, true},
		{"first match wins", "save ₦5,000 then ₦9,000", 5000, true},
		{"no amount", "help me understand my finances", 0, false},
		{"words only", "save a lot of money", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nlp.ExtractAmount(tt.message)
			if ok != tt.ok {
				t.Fatalf("ExtractAmount(%q) ok = %v, want %v", tt.message, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractAmount(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

// The extractor returns absent rather than a default; the conversation
// layer alone decides what absence means.
func TestExtractAmountNeverDefaults(t *testing.T) {
	got, ok := nlp.ExtractAmount("no numbers here at all")
	if ok {
		t.Fatalf("expected absent, got %v", got)
	}
	if got != 0 {
		t.Errorf("absent extraction should carry zero value, got %v", got)
	}
}

// Matching is leftmost-first: a 4-digit run without separators matches its
// first three digits via the grouped alternative. Known limitation kept
// for compatibility with the existing client.
func TestExtractAmountUngroupedFourDigits(t *testing.T) {
	got, ok := nlp.ExtractAmount("save 1234 for me")
	if !ok {
		t.Fatal("expected a match")
	}
	if got != 123 {
		t.Errorf("got %v, want 123", got)
	}
}

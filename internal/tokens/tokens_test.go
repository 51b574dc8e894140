package tokens

import (
	"strings"
	"testing"
)

func TestApproxCount(t *testing.T) {
	counter := approxCounter{}

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 40), 10},
	}
	for _, tt := range tests {
		if got := counter.Count(tt.text); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestApproxTruncate(t *testing.T) {
	counter := approxCounter{}
	text := strings.Repeat("abcd ", 20)

	if got := counter.Truncate(text, 1000); got != text {
		t.Errorf("fitting text changed: %q", got)
	}
	if got := counter.Truncate(text, 0); got != "" {
		t.Errorf("zero budget should yield empty text, got %q", got)
	}

	cut := counter.Truncate(text, 5)
	if !strings.HasSuffix(cut, "…") {
		t.Errorf("truncated text missing ellipsis: %q", cut)
	}
	if counter.Count(cut) > 5 {
		t.Errorf("truncated text counts %d tokens, budget was 5", counter.Count(cut))
	}
}

// Truncation must never return text the same counter measures over budget.
func TestApproxTruncateStaysWithinBudget(t *testing.T) {
	counter := approxCounter{}
	texts := []string{
		"short",
		strings.Repeat("word ", 100),
		strings.Repeat("日本語テキスト", 30),
	}
	for _, text := range texts {
		for _, budget := range []int{1, 2, 7, 25, 10000} {
			cut := counter.Truncate(text, budget)
			if got := counter.Count(cut); got > budget {
				t.Errorf("Count(Truncate(%d chars, %d)) = %d, over budget", len(text), budget, got)
			}
		}
	}
}

func TestNewCounterAlwaysUsable(t *testing.T) {
	// Encoding data may or may not be loadable in the test environment;
	// either way the counter must work.
	counter := NewCounter("")
	if counter == nil {
		t.Fatal("NewCounter returned nil")
	}
	if got := counter.Count(""); got != 0 {
		t.Errorf("Count(empty) = %d, want 0", got)
	}
	if counter.Count("some ordinary text") <= 0 {
		t.Error("nonempty text should count at least one token")
	}
}

func TestNewCounterUnknownEncodingFallsBack(t *testing.T) {
	counter := NewCounter("no-such-encoding")
	if _, ok := counter.(approxCounter); !ok {
		t.Fatalf("expected approximate fallback, got %T", counter)
	}
}

package textutil_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"petreel/internal/textutil"
)

func TestTruncateWordsPreservesWords(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"

	got := textutil.TruncateWords(text, 20)
	if utf8.RuneCountInString(got) > 20 {
		t.Fatalf("truncation exceeded limit: %q (%d runes)", got, utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	trimmed := strings.TrimSuffix(got, "...")
	if !strings.HasPrefix(text, trimmed) {
		t.Fatalf("truncation split mid-word: %q", got)
	}
	if strings.HasSuffix(trimmed, " ") {
		t.Fatalf("trailing space left before ellipsis: %q", got)
	}
}

func TestTruncateWordsShortTextUnchanged(t *testing.T) {
	if got := textutil.TruncateWords("short", 80); got != "short" {
		t.Fatalf("expected unchanged text, got %q", got)
	}
}

func TestTruncateWordsTinyBudget(t *testing.T) {
	if got := textutil.TruncateWords("anything", 3); got != "" {
		t.Fatalf("expected empty result for tiny budget, got %q", got)
	}
}

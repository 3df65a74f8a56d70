package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"fits", "Short text.", 50, "Short text."},
		{"exact", "abcde", 5, "abcde"},
		{"sentence", "First sentence. Second sentence runs long", 30, "First sentence."},
		{"question", "Why now? Because the vote is tomorrow", 20, "Why now?"},
		{"newline", "- one point\n- two point", 15, "- one point"},
		{"decimal is not a sentence end", "Rates rose 3.5 percent, then fell again", 30, "Rates rose 3.5 percent"},
		{"clause", "The board met, voted and adjourned early today", 30, "The board met"},
		{"dash", "The levy passed — barely and late", 25, "The levy passed"},
		{"word", "alpha beta gamma delta", 13, "alpha beta"},
		{"word at limit", "alpha beta gamma", 10, "alpha beta"},
		{"hyphenated word stays whole", "well-known fact here", 12, "well-known"},
		{"single long word", "supercalifragilistic", 5, "super"},
		{"zero limit", "anything", 0, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.in, tc.limit)
			if got != tc.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestTruncateNeverExceedsLimit(t *testing.T) {
	inputs := []string{
		strings.Repeat("word ", 400),
		strings.Repeat("Sentence one. ", 100),
		strings.Repeat("é", 1000),
		strings.Repeat("clause, ", 200),
	}
	for _, in := range inputs {
		for _, limit := range []int{1, 7, 250, 850} {
			got := Truncate(in, limit)
			if n := utf8.RuneCountInString(got); n > limit {
				t.Fatalf("Truncate returned %d runes for limit %d", n, limit)
			}
			if !strings.HasPrefix(in, got) && !strings.HasPrefix(strings.TrimSpace(in), got) {
				t.Fatalf("result %q is not a prefix of the input", got)
			}
		}
	}
}

package textutil

import (
	"strings"
	"unicode"
)

// Truncate shortens s to at most limit runes. Text that already fits is
// returned unchanged. Longer text is cut after the last sentence terminator
// (. ! ? or a newline) inside the limit, else before the last clause boundary
// (, ; : or a dash), else at the last word boundary. A single word longer
// than limit is cut hard.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	// A mark only ends a sentence or clause when followed by space, so
	// decimals and hyphenated words are never split.
	endsToken := func(i int) bool {
		return i+1 >= len(runes) || unicode.IsSpace(runes[i+1])
	}

	for i := limit - 1; i >= 0; i-- {
		switch r := runes[i]; {
		case r == '\n':
			if out := trimSentence(runes[:i]); out != "" {
				return out
			}
		case (r == '.' || r == '!' || r == '?') && endsToken(i):
			if out := trimSentence(runes[:i+1]); out != "" {
				return out
			}
		}
	}

	for i := limit - 1; i >= 0; i-- {
		r := runes[i]
		clause := (r == ',' || r == ';' || r == ':') && endsToken(i)
		dash := r == '–' || r == '—' || (r == '-' && i > 0 && unicode.IsSpace(runes[i-1]) && endsToken(i))
		if clause || dash {
			if out := trimClause(runes[:i]); out != "" {
				return out
			}
		}
	}

	for i := limit; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			if out := trimClause(runes[:i]); out != "" {
				return out
			}
		}
	}
	return strings.TrimSpace(string(runes[:limit]))
}

func trimSentence(runes []rune) string {
	return strings.TrimSpace(string(runes))
}

func trimClause(runes []rune) string {
	return strings.TrimRight(strings.TrimSpace(string(runes)), ",;:-–— ")
}

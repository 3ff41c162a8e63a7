package textutil

import "strings"

// TruncateWords shortens text to at most max runes without splitting words,
// appending "..." when truncation occurred. A max too small for any content
// returns an empty string.
func TruncateWords(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return ""
	}

	cut := string(runes[:max-3])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	cut = strings.TrimRight(cut, " \t\n.,;:!?-")
	if cut == "" {
		return ""
	}
	return cut + "..."
}

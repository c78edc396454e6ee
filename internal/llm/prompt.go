package llm

import "unicode/utf8"

// Clip shortens s to at most maxBytes bytes for a prompt, cutting on a rune
// boundary and marking the cut with "...".
func Clip(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

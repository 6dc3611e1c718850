package utils

import "strings"

// StripNonASCII drops every rune outside the ASCII range. Free-text
// WhatsApp messages are sanitized this way before being handed to the
// registration classifier.
func StripNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package prompt

import "strings"

// Sanitize trims surrounding whitespace and strips C0/C1 control characters
// (0x00-0x1F, 0x7F-0x9F) from a raw drawing prompt. Length limits are
// enforced by the caller.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	return strings.Map(func(r rune) rune {
		if r <= 0x1f || (r >= 0x7f && r <= 0x9f) {
			return -1
		}
		return r
	}, trimmed)
}

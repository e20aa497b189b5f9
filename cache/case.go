package cache

import (
	"strings"
	"unicode"
)

// namespace turns an operation name such as "UserPosts" or "user-posts" into
// the snake_case key namespace "user_posts". Anything that is not a letter or
// a digit collapses into a single underscore.
func namespace(s string) string {
	runes := []rune(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(runes) + 4)

	pendingSep := false
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 && i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					pendingSep = true
				}
			}
			writeSegment(&b, unicode.ToLower(r), &pendingSep)
		case unicode.IsLower(r) || unicode.IsDigit(r):
			writeSegment(&b, r, &pendingSep)
		default:
			if b.Len() > 0 {
				pendingSep = true
			}
		}
	}

	return b.String()
}

func writeSegment(b *strings.Builder, r rune, pendingSep *bool) {
	if *pendingSep && b.Len() > 0 {
		b.WriteByte('_')
	}
	*pendingSep = false
	b.WriteRune(r)
}

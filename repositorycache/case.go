package repositorycache

import (
	"strings"
	"unicode"
)

// toSnake converts a Go type name to a snake_case collection name. Anything
// that is not a letter or digit becomes a single underscore, so reflected
// names such as "*Page[int]" stay free of the key separator.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	pending := false
	sep := func() {
		if b.Len() > 0 {
			pending = true
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sep()
				}
			}
			r = unicode.ToLower(r)
		case unicode.IsDigit(r):
			if i > 0 && unicode.IsLetter(runes[i-1]) {
				sep()
			}
		case unicode.IsLower(r):
		default:
			sep()
			continue
		}

		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

package codec

import (
	"strings"

	"github.com/huandu/xstrings"
)

const changedSuffix = "-changed"

// AttributeName derives the lowercase, hyphenated attribute name for a
// property key. Runes that cannot appear in an attribute name are dropped,
// so keys that differ only in such runes derive the same name, and keys made
// entirely of them derive "".
func AttributeName(key string) string {
	kebab := xstrings.ToKebabCase(key)

	var sb strings.Builder
	sb.Grow(len(kebab))
	lastHyphen := true
	for _, r := range kebab {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + ('a' - 'A'))
			lastHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.':
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

// EventName is the name of the change event dispatched for a property.
func EventName(key string) string {
	return AttributeName(key) + changedSuffix
}

package equipment

import (
	"strings"
	"unicode"
)

// MergeKey is the join key for serials: upper-cased with all whitespace removed, so "SN 123"
// and "sn123" collide. MergeKey(MergeKey(s)) == MergeKey(s).
func MergeKey(serial string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, serial)
}

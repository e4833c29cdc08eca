package inventory

import (
	"strings"
	"unicode"
)

// HeaderKey is a header cell after NormalizeHeader.
type HeaderKey string

// NormalizeHeader upper-cases the cell and drops whitespace and slashes.
// Mapping tables are built and looked up through this function only.
func NormalizeHeader(cell string) HeaderKey {
	return HeaderKey(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\uFEFF' {
			return -1
		}
		return unicode.ToUpper(r)
	}, cell))
}

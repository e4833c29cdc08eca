package inventory

import "strings"

const separator = ','

// Tokenize splits one CSV line on commas outside double quotes. Each field is trimmed and loses
// one surrounding quote pair; escaped quotes inside a field are kept verbatim. Unbalanced quotes
// never fail, they only move field boundaries.
func Tokenize(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == separator && !inQuotes:
			fields = append(fields, cleanField(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cleanField(cur.String()))
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

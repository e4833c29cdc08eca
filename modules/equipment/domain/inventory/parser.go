package inventory

import (
	"strings"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

// ParseResult is the outcome of parsing one file.
type ParseResult struct {
	Records []equipment.Record
	// Rows counts non-blank data rows, including dropped ones.
	Rows int
	// DroppedBlankSerial counts rows discarded because their serial was blank.
	DroppedBlankSerial int
	// UnmappedHeaders lists header cells the mapping does not know, in file order.
	UnmappedHeaders []string
}

// Parse returns the records of text in file order. Duplicate serials are kept.
func Parse(text string, m Mapping) ([]equipment.Record, error) {
	res, err := ParseDetailed(text, m)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ParseDetailed is Parse plus the warnings: how many rows were dropped for a blank serial and which
// header cells matched no field.
func ParseDetailed(text string, m Mapping) (ParseResult, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return ParseResult{}, ErrMalformedInput
	}

	header := strings.TrimPrefix(lines[0], "\uFEFF")
	header = strings.TrimSpace(header)
	header = strings.TrimSuffix(header, string(separator))

	var res ParseResult
	cells := Tokenize(header)
	columns := make([]equipment.Field, len(cells))
	for i, cell := range cells {
		f, ok := m.Lookup(cell)
		if !ok {
			if cell != "" {
				res.UnmappedHeaders = append(res.UnmappedHeaders, cell)
			}
			continue
		}
		columns[i] = f
	}

	for _, line := range lines[1:] {
		res.Rows++
		values := Tokenize(line)
		rec := equipment.NewRecord()
		for i, f := range columns {
			if !f.Valid() {
				continue
			}
			v := ""
			if i < len(values) {
				v = strings.TrimSpace(values[i])
			}
			// Two columns may feed one field; a blank later column does not erase an earlier value.
			if rec.Has(f) && v == "" {
				continue
			}
			rec.Set(f, v)
		}
		if strings.TrimSpace(rec.Serial()) == "" {
			res.DroppedBlankSerial++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// splitLines splits on LF and CRLF and drops blank lines.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(strings.TrimPrefix(line, "\uFEFF")) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

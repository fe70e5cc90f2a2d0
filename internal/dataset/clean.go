package dataset

import (
	"strconv"
	"strings"
)

// CleanStats reports what the cleaning pass removed.
type CleanStats struct {
	EmptyRowsDropped  int
	DuplicatesRemoved int
}

// Clean normalizes cell values and prunes degenerate rows, in this order:
//
//  1. text cells are trimmed; "" and the literal "nan" become null
//  2. rows that are null in every column are dropped
//  3. exact duplicate rows (all values equal) are removed, keeping the first
//
// Trimming happens before the empty-row check so a row of whitespace-only
// cells counts as empty.
func (d *Dataset) Clean() CleanStats {
	var stats CleanStats

	kept := d.Rows[:0]
	for _, row := range d.Rows {
		empty := true
		for c, v := range row {
			if v.Kind() == KindText {
				s := strings.TrimSpace(v.Str())
				if s == "" || strings.EqualFold(s, "nan") {
					row[c] = Null()
					continue
				}
				row[c] = Text(s)
			}
			if !row[c].IsNull() {
				empty = false
			}
		}
		if empty {
			stats.EmptyRowsDropped++
			continue
		}
		kept = append(kept, row)
	}
	d.Rows = kept

	stats.DuplicatesRemoved = d.dedupe()
	return stats
}

// dedupe removes rows whose every value equals an earlier row's, returning
// the number removed.
func (d *Dataset) dedupe() int {
	seen := make(map[string]struct{}, len(d.Rows))
	kept := d.Rows[:0]
	removed := 0

	var b strings.Builder
	for _, row := range d.Rows {
		b.Reset()
		for _, v := range row {
			// Length-prefixing each cell keeps the key injective even when
			// a text payload contains a neighboring cell's canonical form.
			cs := v.canonical()
			b.WriteString(strconv.Itoa(len(cs)))
			b.WriteByte(':')
			b.WriteString(cs)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	d.Rows = kept
	return removed
}

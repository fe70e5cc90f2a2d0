// Package sanitize normalizes raw spreadsheet headers into valid, unique,
// storage-safe column identifiers.
package sanitize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ReservedPrimaryKey is the identifier reserved for the storage-generated
// surrogate key. A source column with this name is renamed to
// ReservedRename so it never collides with the auto-generated column.
const (
	ReservedPrimaryKey = "id"
	ReservedRename     = "original_id"
)

// asciiFold decomposes accented characters and drops the combining marks,
// so "Café" folds to "Cafe" instead of losing the rune entirely.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Headers resolves a full header list in order.
//
// Earlier columns have priority for the clean name; later duplicates receive
// an incrementing numeric suffix. The suffix counter is threaded through the
// used-name set rather than held as hidden state, so a single pass is
// deterministic. Note the pass is idempotent only when no suffix was
// consumed: sanitizing ["x", "x"] yields ["x", "x_1"], and sanitizing that
// output again yields the same list, but feeding already-suffixed names
// together with new collisions can shift suffixes. Callers sanitize a raw
// header list exactly once.
func Headers(raw []string) []string {
	used := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))

	for i, h := range raw {
		name := Name(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		if name == ReservedPrimaryKey {
			name = ReservedRename
		}

		candidate := name
		for suffix := 1; ; suffix++ {
			if _, taken := used[candidate]; !taken {
				break
			}
			candidate = fmt.Sprintf("%s_%d", name, suffix)
		}

		used[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// Name normalizes a single raw header into a candidate identifier:
// fold diacritics to ASCII, trim, lowercase, collapse whitespace runs to a
// single underscore, and drop everything outside [a-z0-9_]. Returns "" when
// nothing survives; Headers substitutes a positional placeholder in that
// case.
func Name(s string) string {
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSep = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
		// Everything else is dropped without acting as a separator.
	}

	return strings.Trim(b.String(), "_")
}

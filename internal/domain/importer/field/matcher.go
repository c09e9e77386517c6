package field

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// minSubstringLen guards the containment heuristics against nonsense
// matches on very short headers such as "id".
const minSubstringLen = 3

// Match maps a raw spreadsheet header onto a canonical field. Rules run in
// strict priority order and the first success wins:
//
//  1. dictionary lookup of the normalized header (known abbreviations)
//  2. exact match against a normalized canonical field name
//  3. substring containment against field names sorted longest-first, so a
//     specific field is not shadowed by a shorter name that happens to be
//     its substring
//
// Returns ("", false) when nothing matches; the column is then left for
// manual assignment.
func Match(header string) (CanonicalField, bool) {
	normalized := Normalize(header)
	if normalized == "" {
		return "", false
	}

	if f, ok := headerDictionary[normalized]; ok {
		return f, true
	}

	for _, f := range all {
		if normalized == Normalize(string(f)) {
			return f, true
		}
	}

	for _, f := range byLengthDesc() {
		nf := Normalize(string(f))
		switch {
		case normalized == nf:
			return f, true
		case len(nf) >= minSubstringLen && strings.Contains(normalized, nf):
			return f, true
		case len(normalized) >= minSubstringLen && strings.Contains(nf, normalized):
			return f, true
		}
	}

	return "", false
}

// Suggestion is a ranked candidate field for a header the deterministic
// rules could not place.
type Suggestion struct {
	Field    CanonicalField `json:"field"`
	Distance int            `json:"distance"` // Levenshtein distance between normalized forms
}

// Suggest ranks canonical fields by edit distance to the header. Used for
// the manual-assignment dropdown when Match found nothing; it never
// auto-assigns. Returns at most limit suggestions, best first.
func Suggest(header string, limit int) []Suggestion {
	normalized := Normalize(header)
	if normalized == "" || limit <= 0 {
		return nil
	}

	suggestions := make([]Suggestion, 0, len(all))
	for _, f := range all {
		suggestions = append(suggestions, Suggestion{
			Field:    f,
			Distance: fuzzy.LevenshteinDistance(normalized, Normalize(string(f))),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Distance < suggestions[j].Distance
	})

	if limit < len(suggestions) {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

func byLengthDesc() []CanonicalField {
	sorted := make([]CanonicalField, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(Normalize(string(sorted[i]))) > len(Normalize(string(sorted[j])))
	})
	return sorted
}

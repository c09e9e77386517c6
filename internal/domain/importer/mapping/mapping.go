// Package mapping owns the column-to-field assignment built at upload time
// and the two validation passes that gate an import.
package mapping

import (
	"errors"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
)

var (
	// ErrFrozen is returned when an assignment is attempted after the
	// import has started.
	ErrFrozen = errors.New("column mapping is frozen")

	// ErrUnknownField is returned when an assignment names a field outside
	// the canonical set.
	ErrUnknownField = errors.New("unknown canonical field")
)

// ColumnMapping assigns raw spreadsheet headers to canonical fields. It is
// mutable while the user refines it and frozen once the import starts.
// A header that is absent is "unmapped", which is distinct from an explicit
// assignment to field.Skip.
type ColumnMapping struct {
	assignments map[string]field.CanonicalField
	frozen      bool
}

// New returns an empty, mutable mapping.
func New() *ColumnMapping {
	return &ColumnMapping{assignments: make(map[string]field.CanonicalField)}
}

// Assign maps header to f, replacing any previous assignment. f must be a
// canonical field or field.Skip.
func (m *ColumnMapping) Assign(header string, f field.CanonicalField) error {
	if m.frozen {
		return ErrFrozen
	}
	if f != field.Skip && !field.IsKnown(f) {
		return ErrUnknownField
	}
	m.assignments[header] = f
	return nil
}

// Clear removes the assignment for header, returning it to "unmapped".
func (m *ColumnMapping) Clear(header string) error {
	if m.frozen {
		return ErrFrozen
	}
	delete(m.assignments, header)
	return nil
}

// Freeze makes the mapping read-only. There is no thaw; a new upload gets
// a new mapping.
func (m *ColumnMapping) Freeze() { m.frozen = true }

// Frozen reports whether the mapping is read-only.
func (m *ColumnMapping) Frozen() bool { return m.frozen }

// FieldFor returns the field assigned to header, if any.
func (m *ColumnMapping) FieldFor(header string) (field.CanonicalField, bool) {
	f, ok := m.assignments[header]
	return f, ok
}

// HeaderFor returns the header assigned to f, if any. Skip columns never
// resolve a field, so they are not considered. When several headers carry
// the same field, the lexicographically first one wins so row errors
// always blame the same column.
func (m *ColumnMapping) HeaderFor(f field.CanonicalField) (string, bool) {
	best := ""
	found := false
	for header, assigned := range m.assignments {
		if assigned != f {
			continue
		}
		if !found || header < best {
			best = header
			found = true
		}
	}
	return best, found
}

// Assignments returns a copy of the current header→field table.
func (m *ColumnMapping) Assignments() map[string]field.CanonicalField {
	out := make(map[string]field.CanonicalField, len(m.assignments))
	for h, f := range m.assignments {
		out[h] = f
	}
	return out
}

// BuildResult is the outcome of the automatic mapping pass over a sheet's
// headers.
type BuildResult struct {
	// Mapping holds the auto-assigned mandatory columns only.
	Mapping *ColumnMapping
	// Suggested holds non-mandatory matches the user must confirm; the
	// system does not silently guess optional fields.
	Suggested map[string]field.CanonicalField
	// Unmatched lists headers the matcher could not place, with ranked
	// candidates for the manual dropdown.
	Unmatched map[string][]field.Suggestion
}

// suggestionLimit bounds the dropdown candidates per unmatched header.
const suggestionLimit = 3

// Build runs the field matcher over every header. Only matches that land
// on a mandatory field are assigned into the initial mapping; everything
// else is surfaced for explicit confirmation. Never mutates row data.
func Build(headers []string) *BuildResult {
	result := &BuildResult{
		Mapping:   New(),
		Suggested: make(map[string]field.CanonicalField),
		Unmatched: make(map[string][]field.Suggestion),
	}

	for _, header := range headers {
		matched, ok := field.Match(header)
		switch {
		case ok && field.IsMandatory(matched):
			// Assign on a fresh mutable mapping cannot fail here.
			_ = result.Mapping.Assign(header, matched)
		case ok:
			result.Suggested[header] = matched
		default:
			result.Unmatched[header] = field.Suggest(header, suggestionLimit)
		}
	}

	return result
}

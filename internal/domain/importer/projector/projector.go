// Package projector converts raw sheet rows into canonical-field records
// ready for submission to the contact store.
package projector

import (
	"strings"
	"unicode"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/mapping"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/sheet"
)

// ProjectedRow is one record keyed by canonical field name. Values are
// plain strings; the store owns format and semantic validation.
type ProjectedRow map[field.CanonicalField]string

// Project copies row values through the frozen mapping: every mapped,
// non-skip column lands under its canonical key. Missing cells become
// empty strings, never null. Only employeeSize and revenue are cleaned;
// everything else is a straight copy.
func Project(row sheet.Row, m *mapping.ColumnMapping) ProjectedRow {
	out := make(ProjectedRow)
	for header, f := range m.Assignments() {
		if f == field.Skip {
			continue
		}
		value := row[header]
		if f == field.EmployeeSize || f == field.Revenue {
			value = CleanValue(value)
		}
		out[f] = value
	}
	return out
}

// ProjectAll projects every row of the sheet, preserving file order.
func ProjectAll(s *sheet.Sheet, m *mapping.ColumnMapping) []ProjectedRow {
	rows := make([]ProjectedRow, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = Project(row, m)
	}
	return rows
}

// CleanValue strips currency symbols and all whitespace, turning inputs
// like " $ 1 M " into the store's compact token "1M".
func CleanValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r == '$' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

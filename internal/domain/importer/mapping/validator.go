package mapping

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/sheet"
)

// StructureError reports mandatory fields with no column assigned. The
// mapping step cannot complete until the user resolves every one.
type StructureError struct {
	Missing []field.CanonicalField
}

func (e *StructureError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("required fields not mapped: %s", strings.Join(names, ", "))
}

// RowContentError reports data rows with a blank mandatory cell. The whole
// import is blocked so the user fixes the source file instead of importing
// partial data silently.
type RowContentError struct {
	// Rows holds 1-based data row numbers, in file order.
	Rows []int
	// Mandatory is the full mandatory field list, included so the message
	// tells the user exactly which values every row needs.
	Mandatory []field.CanonicalField
}

// reportedRowsHead bounds how many offending rows the message names.
const reportedRowsHead = 5

func (e *RowContentError) Error() string {
	head := e.Rows
	suffix := ""
	if len(head) > reportedRowsHead {
		head = head[:reportedRowsHead]
		suffix = "..."
	}
	rows := make([]string, len(head))
	for i, r := range head {
		rows[i] = fmt.Sprintf("%d", r)
	}
	names := make([]string, len(e.Mandatory))
	for i, f := range e.Mandatory {
		names[i] = string(f)
	}
	return fmt.Sprintf(
		"rows %s%s are missing mandatory fields; every row needs values for: %s",
		strings.Join(rows, ", "), suffix, strings.Join(names, ", "),
	)
}

// ValidateStructure checks that every mandatory field appears as a value in
// the mapping. Runs before the user may advance past the mapping step.
func ValidateStructure(m *ColumnMapping) error {
	var missing []field.CanonicalField
	for _, f := range field.Mandatory() {
		if _, ok := m.HeaderFor(f); !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &StructureError{Missing: missing}
	}
	return nil
}

// ValidateRows checks every data row for blank mandatory values, resolving
// each mandatory field through the mapping. Fail-fast: any offending row
// blocks the entire import. Call after ValidateStructure has passed.
func ValidateRows(s *sheet.Sheet, m *ColumnMapping) error {
	mandatory := field.Mandatory()

	headers := make([]string, 0, len(mandatory))
	for _, f := range mandatory {
		header, ok := m.HeaderFor(f)
		if !ok {
			// Structural gap; report it as such rather than blaming rows.
			return ValidateStructure(m)
		}
		headers = append(headers, header)
	}

	var offending []int
	for i := range s.Rows {
		for _, header := range headers {
			if strings.TrimSpace(s.Value(i, header)) == "" {
				offending = append(offending, s.RowNumber(i))
				break
			}
		}
	}

	if len(offending) > 0 {
		return &RowContentError{Rows: offending, Mandatory: mandatory}
	}
	return nil
}

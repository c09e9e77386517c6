// Package sheet models an uploaded spreadsheet as a header row plus string
// cell rows, and provides decoder adapters for the supported file formats.
package sheet

import (
	"errors"
	"strings"
)

var (
	ErrEmptySheet = errors.New("sheet has no rows")
	ErrNoHeaders  = errors.New("sheet has no usable header row")
)

// Row is one non-blank data row keyed by the raw header exactly as it
// appeared in row 1. Missing cells are stored as empty strings.
type Row map[string]string

// Sheet is the parsed grid of an uploaded file. Headers keep their original
// spelling (trimmed) and order; rows with every cell blank are discarded at
// parse time.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// FromGrid builds a Sheet from a raw 2-D cell grid, treating row 0 as
// headers. Header cells are trimmed and empty header cells are dropped
// together with their column. Rows where every mapped cell is blank are
// skipped, matching what the dashboard shows the user.
func FromGrid(grid [][]string) (*Sheet, error) {
	if len(grid) == 0 {
		return nil, ErrEmptySheet
	}

	type column struct {
		header string
		index  int
	}
	columns := make([]column, 0, len(grid[0]))
	for i, h := range grid[0] {
		h = strings.TrimSpace(h)
		if h != "" {
			columns = append(columns, column{header: h, index: i})
		}
	}
	if len(columns) == 0 {
		return nil, ErrNoHeaders
	}

	s := &Sheet{Headers: make([]string, len(columns))}
	for i, c := range columns {
		s.Headers[i] = c.header
	}

	for _, cells := range grid[1:] {
		row := make(Row, len(columns))
		blank := true
		for _, c := range columns {
			value := ""
			if c.index < len(cells) {
				value = strings.TrimSpace(cells[c.index])
			}
			row[c.header] = value
			if value != "" {
				blank = false
			}
		}
		if !blank {
			s.Rows = append(s.Rows, row)
		}
	}

	return s, nil
}

// RowNumber returns the 1-based number of the data row at index i. Row 1
// is the first data row; the header row is not counted. Validation and
// import errors all use this numbering.
func (s *Sheet) RowNumber(i int) int {
	return i + 1
}

// Value returns the trimmed cell under header for data row i, or "" when
// the row or cell is absent.
func (s *Sheet) Value(i int, header string) string {
	if i < 0 || i >= len(s.Rows) {
		return ""
	}
	return s.Rows[i][header]
}

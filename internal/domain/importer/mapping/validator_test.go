package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/sheet"
)

// fullMapping assigns every mandatory field to a same-named header.
func fullMapping(t *testing.T) *ColumnMapping {
	t.Helper()
	m := New()
	for _, f := range field.Mandatory() {
		require.NoError(t, m.Assign(string(f), f))
	}
	return m
}

// mandatoryRow builds one grid row with a value for every mandatory field.
func mandatoryRow(value string) []string {
	row := make([]string, len(field.Mandatory()))
	for i := range row {
		row[i] = value
	}
	return row
}

func mandatoryHeaders() []string {
	headers := make([]string, 0, len(field.Mandatory()))
	for _, f := range field.Mandatory() {
		headers = append(headers, string(f))
	}
	return headers
}

func TestValidateStructure(t *testing.T) {
	t.Run("complete mapping passes", func(t *testing.T) {
		assert.NoError(t, ValidateStructure(fullMapping(t)))
	})

	t.Run("missing mandatory fields reported", func(t *testing.T) {
		m := fullMapping(t)
		require.NoError(t, m.Clear(string(field.Email)))
		require.NoError(t, m.Clear(string(field.CompanyName)))

		err := ValidateStructure(m)
		var structErr *StructureError
		require.ErrorAs(t, err, &structErr)
		assert.ElementsMatch(t,
			[]field.CanonicalField{field.Email, field.CompanyName},
			structErr.Missing)
		assert.Contains(t, err.Error(), "email")
		assert.Contains(t, err.Error(), "companyName")
	})

	t.Run("skip does not satisfy a mandatory field", func(t *testing.T) {
		m := fullMapping(t)
		require.NoError(t, m.Assign(string(field.Email), field.Skip))

		err := ValidateStructure(m)
		var structErr *StructureError
		require.ErrorAs(t, err, &structErr)
		assert.Contains(t, structErr.Missing, field.Email)
	})

	t.Run("optional fields never block", func(t *testing.T) {
		m := fullMapping(t)
		// No phone, no address, no website mapped anywhere.
		assert.NoError(t, ValidateStructure(m))
	})
}

func TestValidateRows(t *testing.T) {
	t.Run("all rows complete", func(t *testing.T) {
		s, err := sheet.FromGrid([][]string{
			mandatoryHeaders(),
			mandatoryRow("a"),
			mandatoryRow("b"),
		})
		require.NoError(t, err)

		assert.NoError(t, ValidateRows(s, fullMapping(t)))
	})

	t.Run("rows with blank mandatory cells reported 1-based", func(t *testing.T) {
		bad := mandatoryRow("x")
		bad[3] = "" // blank email

		s, err := sheet.FromGrid([][]string{
			mandatoryHeaders(),
			mandatoryRow("a"),
			bad,
			mandatoryRow("c"),
			bad,
		})
		require.NoError(t, err)

		err = ValidateRows(s, fullMapping(t))
		var rowErr *RowContentError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, []int{2, 4}, rowErr.Rows)
	})

	t.Run("message truncates to five rows", func(t *testing.T) {
		grid := [][]string{mandatoryHeaders()}
		bad := mandatoryRow("x")
		bad[0] = ""
		for i := 0; i < 8; i++ {
			grid = append(grid, bad)
		}
		s, err := sheet.FromGrid(grid)
		require.NoError(t, err)

		err = ValidateRows(s, fullMapping(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1, 2, 3, 4, 5...")
		assert.NotContains(t, err.Error(), "6")
	})

	t.Run("structural gap reported as structure error", func(t *testing.T) {
		s, err := sheet.FromGrid([][]string{
			mandatoryHeaders(),
			mandatoryRow("a"),
		})
		require.NoError(t, err)

		m := fullMapping(t)
		require.NoError(t, m.Clear(string(field.Revenue)))

		err = ValidateRows(s, m)
		var structErr *StructureError
		require.ErrorAs(t, err, &structErr)
		assert.Equal(t, []field.CanonicalField{field.Revenue}, structErr.Missing)
	})
}

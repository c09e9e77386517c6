package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		header string
		expect CanonicalField
		ok     bool
	}{
		// Dictionary lookups beat every other rule.
		{"dictionary abbreviation", "fname", FirstName, true},
		{"dictionary with punctuation", "E-mail", Email, true},
		{"title lands on jobTitle", "Title", JobTitle, true},
		{"org lands on companyName", "Org", CompanyName, true},
		{"company lands on companyName", "Company", CompanyName, true},
		{"role with department suffix", "Job Role/Department", JobRole, true},
		{"technology installed base", "Technology - Installed Base", Technology, true},
		{"headcount lands on employeeSize", "Headcount", EmployeeSize, true},

		// Exact canonical names, any casing or spacing.
		{"exact field name", "employeeSize", EmployeeSize, true},
		{"exact with spaces", "Last Update Date", LastUpdateDate, true},
		{"exact job level", "Job Level", JobLevel, true},

		// Substring containment, longest field name first.
		{"header contains field", "Work Email", Email, true},
		{"longer field wins over substring", "Direct Phone Number", DirectPhone, true},
		{"header contained in field", "websit", Website, true},

		// No match at all.
		{"unknown header", "Favorite Color", "", false},
		{"too short for containment", "id", "", false},
		{"empty header", "", "", false},
		{"punctuation only", "---", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expect, got)
		})
	}
}

// The matcher must be deterministic: the same header always lands on the
// same field regardless of how many times it runs.
func TestMatch_Deterministic(t *testing.T) {
	headers := []string{"Work Email", "Direct Phone Number", "Company", "indus"}
	for _, header := range headers {
		first, firstOK := Match(header)
		for i := 0; i < 50; i++ {
			got, ok := Match(header)
			require.Equal(t, firstOK, ok)
			require.Equal(t, first, got, "header %q flapped on run %d", header, i)
		}
	}
}

func TestSuggest(t *testing.T) {
	t.Run("ranks closest field first", func(t *testing.T) {
		suggestions := Suggest("emial", 3)
		require.Len(t, suggestions, 3)
		assert.Equal(t, Email, suggestions[0].Field)
	})

	t.Run("honors limit", func(t *testing.T) {
		assert.Len(t, Suggest("anything", 5), 5)
		assert.Len(t, Suggest("anything", 100), len(All()))
	})

	t.Run("deterministic ordering", func(t *testing.T) {
		first := Suggest("compny nme", 5)
		for i := 0; i < 20; i++ {
			require.Equal(t, first, Suggest("compny nme", 5))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, Suggest("", 3))
		assert.Nil(t, Suggest("email", 0))
	})
}

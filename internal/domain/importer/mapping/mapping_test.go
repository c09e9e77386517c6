package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/field"
)

func TestColumnMapping_Assign(t *testing.T) {
	m := New()

	require.NoError(t, m.Assign("Email Address", field.Email))
	f, ok := m.FieldFor("Email Address")
	require.True(t, ok)
	assert.Equal(t, field.Email, f)

	t.Run("reassignment replaces", func(t *testing.T) {
		require.NoError(t, m.Assign("Email Address", field.Phone))
		f, _ := m.FieldFor("Email Address")
		assert.Equal(t, field.Phone, f)
	})

	t.Run("skip is allowed", func(t *testing.T) {
		require.NoError(t, m.Assign("Internal Notes", field.Skip))
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		assert.ErrorIs(t, m.Assign("Header", "madeUpField"), ErrUnknownField)
	})
}

func TestColumnMapping_Clear(t *testing.T) {
	m := New()
	require.NoError(t, m.Assign("Email", field.Email))
	require.NoError(t, m.Clear("Email"))

	_, ok := m.FieldFor("Email")
	assert.False(t, ok)
}

func TestColumnMapping_Freeze(t *testing.T) {
	m := New()
	require.NoError(t, m.Assign("Email", field.Email))

	m.Freeze()
	assert.True(t, m.Frozen())

	assert.ErrorIs(t, m.Assign("Name", field.FirstName), ErrFrozen)
	assert.ErrorIs(t, m.Clear("Email"), ErrFrozen)

	// The frozen mapping still resolves.
	f, ok := m.FieldFor("Email")
	require.True(t, ok)
	assert.Equal(t, field.Email, f)
}

func TestColumnMapping_HeaderFor(t *testing.T) {
	m := New()
	require.NoError(t, m.Assign("Work Email", field.Email))

	header, ok := m.HeaderFor(field.Email)
	require.True(t, ok)
	assert.Equal(t, "Work Email", header)

	_, ok = m.HeaderFor(field.Phone)
	assert.False(t, ok)

	t.Run("duplicate assignments resolve to one header", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Assign("Work Email", field.Email))
		require.NoError(t, m.Assign("Personal Email", field.Email))

		for i := 0; i < 50; i++ {
			header, ok := m.HeaderFor(field.Email)
			require.True(t, ok)
			assert.Equal(t, "Personal Email", header)
		}
	})
}

func TestColumnMapping_AssignmentsIsCopy(t *testing.T) {
	m := New()
	require.NoError(t, m.Assign("Email", field.Email))

	snapshot := m.Assignments()
	snapshot["Email"] = field.Phone

	f, _ := m.FieldFor("Email")
	assert.Equal(t, field.Email, f)
}

func TestBuild(t *testing.T) {
	t.Run("auto-assigns mandatory matches only", func(t *testing.T) {
		result := Build([]string{"First Name", "E-mail", "Phone", "Favorite Color"})

		f, ok := result.Mapping.FieldFor("First Name")
		require.True(t, ok)
		assert.Equal(t, field.FirstName, f)

		f, ok = result.Mapping.FieldFor("E-mail")
		require.True(t, ok)
		assert.Equal(t, field.Email, f)

		// Phone matches but is optional, so it is suggested, not assigned.
		_, ok = result.Mapping.FieldFor("Phone")
		assert.False(t, ok)
		assert.Equal(t, field.Phone, result.Suggested["Phone"])

		// Unknown headers get ranked candidates for the dropdown.
		_, ok = result.Mapping.FieldFor("Favorite Color")
		assert.False(t, ok)
		assert.NotEmpty(t, result.Unmatched["Favorite Color"])
	})

	t.Run("no headers", func(t *testing.T) {
		result := Build(nil)
		assert.Empty(t, result.Mapping.Assignments())
		assert.Empty(t, result.Suggested)
		assert.Empty(t, result.Unmatched)
	})
}

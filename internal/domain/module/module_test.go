package module

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/shared/errors"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestNewModule(t *testing.T) {
	t.Run("valid module", func(t *testing.T) {
		m, err := NewModule(CreateParams{
			ID:           "mod_invoices",
			TabName:      "  Invoices ",
			TabURL:       "/invoices",
			Number:       3,
			Capabilities: Capabilities{HasView: true, HasAdd: true},
			IsActive:     true,
		})
		require.NoError(t, err)

		assert.Equal(t, "Invoices", m.TabName())
		assert.Equal(t, "/invoices", m.TabURL())
		assert.True(t, m.IsRoot())
		assert.True(t, m.IsAvailable())
		assert.False(t, m.IsDeleted())
		assert.True(t, m.Capabilities().HasAdd)
	})

	tests := []struct {
		name    string
		params  CreateParams
		wantErr string
	}{
		{
			name:    "missing tab name",
			params:  CreateParams{ID: "mod_a", TabURL: "/a"},
			wantErr: "tab name is required",
		},
		{
			name:    "blank tab url",
			params:  CreateParams{ID: "mod_a", TabName: "A", TabURL: "   "},
			wantErr: "tab URL is required",
		},
		{
			name:    "own parent",
			params:  CreateParams{ID: "mod_a", TabName: "A", TabURL: "/a", ParentID: "mod_a"},
			wantErr: "module cannot be its own parent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewModule(tt.params)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModule_Apply(t *testing.T) {
	m, err := NewModule(CreateParams{ID: "mod_a", TabName: "A", TabURL: "/a", IsActive: true})
	require.NoError(t, err)

	err = m.Apply(Patch{
		TabName:  strPtr("Accounts"),
		Number:   intPtr(7),
		ParentID: strPtr("mod_root"),
		HasEdit:  boolPtr(true),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Accounts", m.TabName())
	assert.Equal(t, "/a", m.TabURL())
	assert.Equal(t, 7, m.Number())
	assert.Equal(t, "mod_root", m.ParentID())
	assert.True(t, m.Capabilities().HasEdit)
	assert.False(t, m.IsAvailable())

	require.NoError(t, m.Apply(Patch{ParentID: strPtr("")}))
	assert.True(t, m.IsRoot())

	err = m.Apply(Patch{ParentID: strPtr("mod_a")})
	assert.True(t, errors.IsValidationError(err))

	err = m.Apply(Patch{TabURL: strPtr("")})
	assert.True(t, errors.IsValidationError(err))
}

func TestModule_MarkDeleted(t *testing.T) {
	m, err := ReconstructModule("mod_a", 1, "A", "", "/a", 0, "", Capabilities{}, false, true, false, time.Now(), time.Now())
	require.NoError(t, err)

	require.NoError(t, m.MarkDeleted())
	assert.True(t, m.IsDeleted())
	assert.False(t, m.IsAvailable())

	assert.True(t, errors.IsNotFoundError(m.MarkDeleted()))
	assert.True(t, errors.IsNotFoundError(m.Apply(Patch{Number: intPtr(1)})))
}

func TestPatch_IsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{IsDefault: boolPtr(false)}.IsEmpty())
}

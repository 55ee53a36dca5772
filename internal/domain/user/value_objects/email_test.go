package value_objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
		expected  string
	}{
		{name: "valid email", input: "clerk@example.com", expected: "clerk@example.com"},
		{name: "normalized", input: "  Clerk@Example.COM ", expected: "clerk@example.com"},
		{name: "empty", input: "   ", wantError: true},
		{name: "missing domain", input: "clerk@", wantError: true},
		{name: "non ascii", input: "clérk@example.com", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := NewEmail(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, email)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, email.String())
		})
	}
}

func TestEmail_Equals(t *testing.T) {
	a, _ := NewEmail("a@example.com")
	b, _ := NewEmail("A@example.com")
	var nilEmail *Email

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(nilEmail))
	assert.True(t, nilEmail.Equals(nil))
}

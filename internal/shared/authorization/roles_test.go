package authorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRole_AtLeast(t *testing.T) {
	tests := []struct {
		role UserRole
		min  UserRole
		want bool
	}{
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		{UserRole("owner"), RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+">="+string(tt.min), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.min))
		})
	}
}

func TestParseUserRole(t *testing.T) {
	assert.Equal(t, RoleSuperAdmin, ParseUserRole("super_admin"))
	assert.Equal(t, RoleAdmin, ParseUserRole("admin"))
	assert.Equal(t, RoleUser, ParseUserRole("root"))
	assert.False(t, RoleUser.IsAdmin())
	assert.True(t, RoleSuperAdmin.IsAdmin())
}

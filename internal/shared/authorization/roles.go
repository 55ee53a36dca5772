package authorization

type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleUser       UserRole = "user"
)

var roleRank = map[UserRole]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank orders roles; unknown roles rank below every known one.
func (r UserRole) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether r sits at or above min in the role hierarchy.
// An unknown role never satisfies the check.
func (r UserRole) AtLeast(min UserRole) bool {
	return r.IsValid() && r.Rank() >= min.Rank()
}

// IsAdmin reports whether the role can manage modules and permissions.
func (r UserRole) IsAdmin() bool {
	return r.AtLeast(RoleAdmin)
}

// ParseUserRole falls back to RoleUser for unknown input.
func ParseUserRole(s string) UserRole {
	role := UserRole(s)
	if role.IsValid() {
		return role
	}
	return RoleUser
}

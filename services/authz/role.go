package authz

// Role is the ordered permission tier of a user. Tiers nest strictly:
// platform_admin > owner > manager > member.
type Role string

const (
	RolePlatformAdmin Role = "platform_admin"
	RoleOwner         Role = "owner"
	RoleManager       Role = "manager"
	RoleMember        Role = "member"
)

func (r Role) String() string {
	switch r {
	case RolePlatformAdmin, RoleOwner, RoleManager, RoleMember:
		return string(r)
	default:
		return ""
	}
}

func (r Role) Valid() bool {
	return r.String() != ""
}

// Tier returns the numeric rank of the role, higher is broader.
func (r Role) Tier() int {
	switch r {
	case RolePlatformAdmin:
		return 4
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r meets the minimum tier required by min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && min.Valid() && r.Tier() >= min.Tier()
}

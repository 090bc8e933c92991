package domain

// Role enumerates the staff roles recognised by the dashboard.
type Role string

const (
	RoleFounder        Role = "founder"
	RoleGeneralManager Role = "general_manager"
	RoleManager        Role = "manager"
	RoleSupervisor     Role = "supervisor"
	RoleSupport        Role = "support"
	// RoleUnknown covers unset or unrecognised role strings. It grants no
	// special access anywhere.
	RoleUnknown Role = ""
)

// ParseRole maps a raw role string from the staff API onto the closed
// enumeration. Anything unrecognised collapses to RoleUnknown.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleFounder, RoleGeneralManager, RoleManager, RoleSupervisor, RoleSupport:
		return Role(raw)
	default:
		return RoleUnknown
	}
}

// AuthUser is the authenticated staff member as reported by the staff API.
type AuthUser struct {
	ID          string   `json:"id"`
	PlatformID  string   `json:"platform_id"`
	Username    string   `json:"username"`
	Role        Role     `json:"role"`
	CanLogin    bool     `json:"can_login"`
	Permissions []string `json:"permissions"`
	DisplayName string   `json:"display_name"`
	AvatarURL   string   `json:"avatar_url"`
}

// MayUseDashboard reports whether the user is allowed past the login screen.
// Founders are exempt from the can_login gate.
func (u AuthUser) MayUseDashboard() bool {
	return u.Role == RoleFounder || u.CanLogin
}

package auth

import "strings"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// NormalizeRole maps arbitrary input to a known role, defaulting to the
// least-privileged one.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleUser):
		return RoleUser
	default:
		return RoleUser
	}
}

func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin), string(RoleUser):
		return true
	default:
		return false
	}
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current := NormalizeRole(role)
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}

package appointment

import "strings"

// ===============================
// User origin / role
// ===============================

type UserOrigin string

const (
	OriginNew      UserOrigin = "new"
	OriginExisting UserOrigin = "existing"
	OriginGuest    UserOrigin = "guest"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// ParseOrigin aceita "new-user", "existing-user", "guest-user" e as formas curtas.
func ParseOrigin(raw string) UserOrigin {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "-user")
	switch UserOrigin(v) {
	case OriginNew, OriginExisting, OriginGuest:
		return UserOrigin(v)
	}
	return ""
}

package model

import "strings"

// Role is the caller's role as asserted by the identity provider in the
// access token's "role" claim.
type Role string

const (
    RoleClient    Role = "CLIENT"
    RoleReception Role = "RECEPTION"
    RoleAdmin     Role = "ADMIN"
)

// ParseRole normalises a claim value into a Role.  Unknown values yield
// an empty role which no route accepts.
func ParseRole(s string) Role {
    switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
    case RoleClient, RoleReception, RoleAdmin:
        return r
    }
    return ""
}

// IsStaff reports whether the role belongs to hotel staff.
func (r Role) IsStaff() bool {
    return r == RoleReception || r == RoleAdmin
}

// Requester is the authenticated caller of an operation.  Authentication
// happens upstream; the engine only applies business-rule authorisation
// on top of it.
type Requester struct {
    UserID uint64
    Role   Role
    Email  string
}

// CanAccessClient reports whether the requester may see data owned by
// clientID: staff always, clients only their own.
func (r Requester) CanAccessClient(clientID uint64) bool {
    return r.Role.IsStaff() || (r.Role == RoleClient && r.UserID == clientID)
}

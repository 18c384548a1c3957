package identity

import "time"

// PermissionType represents a capability tag attached to an identity.
type PermissionType string

const (
	// PermissionAdmin grants access to every console area, including the
	// deploy and monitoring dashboards.
	PermissionAdmin PermissionType = "admin"
)

// Identity is the authenticated-user record the console renders against.
// It is a read-only projection for consumers; all mutation flows through
// the session manager so that store/state invariants are preserved.
type Identity struct {
	ID          string           `json:"id,omitempty"`           // Unique, stable identifier
	Email       string           `json:"email,omitempty"`        // User's email address
	DisplayName string           `json:"full_name,omitempty"`    // Name shown in the console header
	FirstName   string           `json:"first_name,omitempty"`   // First name of the user
	LastName    string           `json:"last_name,omitempty"`    // Last name of the user
	Role        string           `json:"role,omitempty"`         // Console role label (e.g. "admin")
	IsActive    bool             `json:"is_active,omitempty"`    // Inactive users cannot sign in
	Permissions []PermissionType `json:"permissions,omitempty"`  // Capability tags
	CreatedAt   time.Time        `json:"created_at,omitempty"`   // When the account was created
	LastLogin   *time.Time       `json:"last_login,omitempty"`   // Last successful sign-in, if any
}

// Partial carries the fields a profile update may change. Nil pointers mean
// "leave unchanged".
type Partial struct {
	DisplayName *string `json:"full_name,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
}

// HasPermission checks whether the identity carries a specific capability tag.
func (id *Identity) HasPermission(p PermissionType) bool {
	for _, perm := range id.Permissions {
		if perm == p {
			return true
		}
	}
	return false
}

// IsAdmin returns true if the identity carries the admin capability.
func (id *Identity) IsAdmin() bool {
	return id.HasPermission(PermissionAdmin)
}

// Merge applies a partial update onto a copy of the identity and returns it.
// Used for bypass sessions, where profile edits never reach the backend.
func (id Identity) Merge(p Partial) Identity {
	if p.DisplayName != nil {
		id.DisplayName = *p.DisplayName
	}
	if p.FirstName != nil {
		id.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		id.LastName = *p.LastName
	}
	return id
}

package identity

import "time"

// Reserved bypass credential and token values. A bypass identity is a fixed,
// backend-independent account activated by these exact values; it exists so
// the console can be demonstrated and administered without a live auth
// backend. These are not a security boundary.
const (
	DemoEmail    = "demo@onionrsv.com"
	DemoPassword = "demo123"
	DemoToken    = "demo-token"
	DemoRefresh  = "demo-refresh"

	AdminEmail    = "admin@onionrsv.com"
	AdminPassword = "admin123"
	AdminToken    = "admin-token"
	AdminRefresh  = "admin-refresh"
)

// bypassEpoch keeps the fixed identities' CreatedAt stable across processes.
var bypassEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Demo returns the fixed demo identity.
func Demo() Identity {
	return Identity{
		ID:          "demo-user",
		Email:       DemoEmail,
		DisplayName: "Demo User",
		FirstName:   "Demo",
		LastName:    "User",
		Role:        "agent",
		IsActive:    true,
		CreatedAt:   bypassEpoch,
	}
}

// Admin returns the fixed admin identity.
func Admin() Identity {
	return Identity{
		ID:          "admin-user",
		Email:       AdminEmail,
		DisplayName: "Console Administrator",
		FirstName:   "Console",
		LastName:    "Administrator",
		Role:        "admin",
		IsActive:    true,
		Permissions: []PermissionType{PermissionAdmin},
		CreatedAt:   bypassEpoch,
	}
}

// BypassForToken maps a reserved access-token value to its fixed identity.
// The second return is false for any non-reserved token.
func BypassForToken(accessToken string) (Identity, bool) {
	switch accessToken {
	case DemoToken:
		return Demo(), true
	case AdminToken:
		return Admin(), true
	}
	return Identity{}, false
}

// BypassForCredentials maps a reserved email/password pair to its fixed
// identity and token pair. The last return is false for any other pair.
func BypassForCredentials(email, password string) (Identity, string, string, bool) {
	switch {
	case email == DemoEmail && password == DemoPassword:
		return Demo(), DemoToken, DemoRefresh, true
	case email == AdminEmail && password == AdminPassword:
		return Admin(), AdminToken, AdminRefresh, true
	}
	return Identity{}, "", "", false
}

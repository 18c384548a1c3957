package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onionrsv/console-session/identity"
)

func TestBypassForCredentials(t *testing.T) {
	id, access, refresh, ok := identity.BypassForCredentials(identity.DemoEmail, identity.DemoPassword)
	require.True(t, ok)
	require.Equal(t, identity.DemoEmail, id.Email)
	require.Equal(t, identity.DemoToken, access)
	require.Equal(t, identity.DemoRefresh, refresh)

	id, access, refresh, ok = identity.BypassForCredentials(identity.AdminEmail, identity.AdminPassword)
	require.True(t, ok)
	require.Equal(t, "admin", id.Role)
	require.True(t, id.IsAdmin())
	require.Equal(t, identity.AdminToken, access)
	require.Equal(t, identity.AdminRefresh, refresh)

	_, _, _, ok = identity.BypassForCredentials(identity.DemoEmail, "wrong")
	require.False(t, ok)
}

func TestBypassForToken(t *testing.T) {
	id, ok := identity.BypassForToken(identity.AdminToken)
	require.True(t, ok)
	require.Equal(t, identity.AdminEmail, id.Email)

	_, ok = identity.BypassForToken("ordinary-token")
	require.False(t, ok)
}

func TestMergeAppliesOnlySetFields(t *testing.T) {
	base := identity.Demo()
	name := "Renamed"
	merged := base.Merge(identity.Partial{DisplayName: &name})

	require.Equal(t, "Renamed", merged.DisplayName)
	require.Equal(t, base.FirstName, merged.FirstName)
	require.Equal(t, "Demo User", identity.Demo().DisplayName, "fixtures must stay immutable")
}

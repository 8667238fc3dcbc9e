package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleTierOrdering(t *testing.T) {
	require.Greater(t, RolePlatformAdmin.Tier(), RoleOwner.Tier())
	require.Greater(t, RoleOwner.Tier(), RoleManager.Tier())
	require.Greater(t, RoleManager.Tier(), RoleMember.Tier())
	require.Zero(t, Role("intern").Tier())
}

func TestRoleAtLeast(t *testing.T) {
	require.True(t, RoleOwner.AtLeast(RoleMember))
	require.True(t, RoleOwner.AtLeast(RoleOwner))
	require.False(t, RoleMember.AtLeast(RoleManager))
	require.False(t, Role("intern").AtLeast(RoleMember))
	require.False(t, RoleOwner.AtLeast(Role("intern")))
}

func TestActorIsPlatformAdmin(t *testing.T) {
	require.True(t, Actor{UserID: "u1", Role: RolePlatformAdmin}.IsPlatformAdmin())

	// A platform_admin role pinned to a tenant is not treated as an operator.
	require.False(t, Actor{UserID: "u1", TenantID: "t1", Role: RolePlatformAdmin}.IsPlatformAdmin())
	require.False(t, Actor{UserID: "u1", TenantID: "t1", Role: RoleOwner}.IsPlatformAdmin())
}

package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownRoleDeniesEverything(t *testing.T) {
	table := DefaultTable()
	for _, perm := range []string{PermTaskRead, PermProjectCreate, "*", "anything", ""} {
		assert.False(t, table.HasPermission("ghost", perm), perm)
	}
	assert.Empty(t, table.Permissions("ghost"))
	assert.False(t, table.Known("ghost"))
}

func TestEmptyEntryBehavesLikeUnknownRole(t *testing.T) {
	table := NewTable(map[string][]string{"auditor": {}})
	assert.True(t, table.Known("auditor"))
	assert.False(t, table.HasPermission("auditor", PermTaskRead))
	assert.Empty(t, table.Permissions("auditor"))
}

func TestAdminHoldsEveryPermissionThroughWildcard(t *testing.T) {
	table := DefaultTable()
	for _, perm := range []string{PermProjectDelete, "nonsense", "x:y:z", ""} {
		assert.True(t, table.HasPermission(RoleAdmin, perm), perm)
	}
	assert.Equal(t, []string{Wildcard}, table.Permissions(RoleAdmin))
}

func TestResourceWildcard(t *testing.T) {
	table := NewTable(map[string][]string{
		"developer": {"task:read", "task:*"},
	})
	assert.True(t, table.HasPermission("developer", "task:update"))
	assert.True(t, table.HasPermission("developer", "task:update:own"))
	assert.False(t, table.HasPermission("developer", "project:read"))
	assert.False(t, table.HasPermission("developer", "taskboard:read"))
}

func TestWildcardArgumentIsNotExpanded(t *testing.T) {
	table := NewTable(map[string][]string{
		"reader": {"task:read"},
	})
	assert.False(t, table.HasPermission("reader", "task:*"))

	holder := NewTable(map[string][]string{
		"pm": {"task:*"},
	})
	assert.True(t, holder.HasPermission("pm", "task:*"), "literal entry matches itself")
}

func TestRoleLookupIsCaseInsensitive(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t,
		table.HasPermission("user", PermTaskReadOwn),
		table.HasPermission("USER", PermTaskReadOwn),
	)
	assert.True(t, table.HasPermission("  Project_Manager ", PermProjectCreate))
}

func TestPermissionComparisonIsCaseSensitive(t *testing.T) {
	table := DefaultTable()
	assert.True(t, table.HasPermission(RoleDeveloper, PermTaskRead))
	assert.False(t, table.HasPermission(RoleDeveloper, "TASK:READ"))
}

func TestUserCannotCreateProjects(t *testing.T) {
	table := DefaultTable()
	assert.False(t, table.HasPermission(RoleUser, PermProjectCreate))
	assert.True(t, table.HasPermission(RoleProjectManager, PermProjectCreate))
}

func TestAllowsIsOrAcrossRolesAndPermissions(t *testing.T) {
	table := DefaultTable()
	assert.True(t, table.Allows([]string{RoleUser, RoleTester}, PermTaskUpdate, PermTaskUpdateOwn))
	assert.False(t, table.Allows([]string{RoleUser}, PermTaskUpdate, PermTaskDelete))
	assert.False(t, table.Allows(nil, PermTaskRead))
}

func TestEveryKnownRoleHasATableEntry(t *testing.T) {
	table := DefaultTable()
	for _, role := range KnownRoles() {
		require.True(t, table.Known(role), "missing table entry for %s", role)
	}
	assert.ElementsMatch(t, KnownRoles(), table.Roles())
}

func TestPermissionsReturnsCopy(t *testing.T) {
	table := DefaultTable()
	perms := table.Permissions(RoleDeveloper)
	require.NotEmpty(t, perms)
	perms[0] = "mutated"
	assert.NotContains(t, table.Permissions(RoleDeveloper), "mutated")
}

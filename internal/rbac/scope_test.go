package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeResolution(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, ScopeAll, table.Scope([]string{RoleProjectManager}, PermTaskUpdate, PermTaskUpdateOwn))
	assert.Equal(t, ScopeOwn, table.Scope([]string{RoleDeveloper}, PermTaskUpdate, PermTaskUpdateOwn))
	assert.Equal(t, ScopeNone, table.Scope([]string{RoleUser}, PermTaskUpdate, PermTaskUpdateOwn))
	assert.Equal(t, ScopeAll, table.Scope([]string{RoleUser, RoleAdmin}, PermTaskDelete, ""))
	assert.Equal(t, ScopeNone, table.Scope(nil, PermTaskRead, PermTaskReadOwn))
}

func TestScopePermits(t *testing.T) {
	assert.True(t, ScopeAll.Permits(1, 2))
	assert.True(t, ScopeOwn.Permits(3, 3))
	assert.False(t, ScopeOwn.Permits(3, 4))
	assert.False(t, ScopeOwn.Permits(0, 0), "anonymous never owns a row")
	assert.False(t, ScopeNone.Permits(1, 1))
}

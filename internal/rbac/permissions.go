package rbac

// Role names known to the application.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleDeveloper      = "developer"
	RoleTester         = "tester"
	RoleUser           = "user"
)

// Wildcard grants every permission when present in a role's set.
const Wildcard = "*"

// Project permissions.
const (
	PermProjectAll    = "project:*"
	PermProjectRead   = "project:read"
	PermProjectCreate = "project:create"
	PermProjectUpdate = "project:update"
	PermProjectDelete = "project:delete"
)

// Project membership permissions.
const (
	PermMemberAll    = "member:*"
	PermMemberRead   = "member:read"
	PermMemberCreate = "member:create"
	PermMemberDelete = "member:delete"
)

// Task permissions.
const (
	PermTaskAll       = "task:*"
	PermTaskRead      = "task:read"
	PermTaskReadOwn   = "task:read:own"
	PermTaskCreate    = "task:create"
	PermTaskUpdate    = "task:update"
	PermTaskUpdateOwn = "task:update:own"
	PermTaskDelete    = "task:delete"
)

// Comment permissions.
const (
	PermCommentAll       = "comment:*"
	PermCommentRead      = "comment:read"
	PermCommentCreate    = "comment:create"
	PermCommentUpdate    = "comment:update"
	PermCommentUpdateOwn = "comment:update:own"
	PermCommentDelete    = "comment:delete"
	PermCommentDeleteOwn = "comment:delete:own"
)

// User directory permissions.
const (
	PermUserRead = "user:read"
)

// KnownRoles lists every role name referenced by guards, seeds and the navigation gate.
func KnownRoles() []string {
	return []string{
		RoleAdmin,
		RoleProjectManager,
		RoleDeveloper,
		RoleTester,
		RoleUser,
	}
}

// DefaultGrants is the static permission table of the application.
func DefaultGrants() map[string][]string {
	return map[string][]string{
		RoleAdmin: {Wildcard},
		RoleProjectManager: {
			PermProjectAll,
			PermMemberAll,
			PermTaskAll,
			PermCommentAll,
			PermUserRead,
		},
		RoleDeveloper: {
			PermProjectRead,
			PermMemberRead,
			PermTaskRead,
			PermTaskCreate,
			PermTaskUpdateOwn,
			PermCommentRead,
			PermCommentCreate,
			PermCommentUpdateOwn,
			PermCommentDeleteOwn,
		},
		RoleTester: {
			PermProjectRead,
			PermMemberRead,
			PermTaskRead,
			PermTaskUpdateOwn,
			PermCommentRead,
			PermCommentCreate,
			PermCommentUpdateOwn,
			PermCommentDeleteOwn,
		},
		RoleUser: {
			PermProjectRead,
			PermTaskReadOwn,
			PermCommentRead,
			PermCommentCreate,
			PermCommentUpdateOwn,
		},
	}
}

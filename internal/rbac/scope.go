package rbac

// Scope is the reach of a permission that has an ":own" variant.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeOwn
	ScopeAll
)

// Scope resolves whether roles hold the full permission, only its ":own" form, or neither.
func (t *Table) Scope(roles []string, full, own string) Scope {
	switch {
	case t.Allows(roles, full):
		return ScopeAll
	case own != "" && t.Allows(roles, own):
		return ScopeOwn
	default:
		return ScopeNone
	}
}

// Permits reports whether the scope covers a row owned by ownerID when acting as userID.
func (s Scope) Permits(userID, ownerID int64) bool {
	switch s {
	case ScopeAll:
		return true
	case ScopeOwn:
		return userID != 0 && userID == ownerID
	default:
		return false
	}
}

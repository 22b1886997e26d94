package rbac

import (
	"sort"
	"strings"
)

// Table maps role names to their permission sets. It is immutable after construction.
type Table struct {
	grants map[string]map[string]struct{}
}

// NewTable builds a Table from role → permissions. Role names are canonicalised.
func NewTable(grants map[string][]string) *Table {
	t := &Table{grants: make(map[string]map[string]struct{}, len(grants))}
	for role, perms := range grants {
		key := CanonicalRole(role)
		if key == "" {
			continue
		}
		set, ok := t.grants[key]
		if !ok {
			set = make(map[string]struct{}, len(perms))
			t.grants[key] = set
		}
		for _, p := range perms {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
	}
	return t
}

// DefaultTable returns the application permission table.
func DefaultTable() *Table {
	return NewTable(DefaultGrants())
}

// CanonicalRole trims and lowercases a role name.
func CanonicalRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// Known reports whether the role has an entry, even an empty one.
func (t *Table) Known(role string) bool {
	if t == nil {
		return false
	}
	_, ok := t.grants[CanonicalRole(role)]
	return ok
}

// Roles returns the sorted role names present in the table.
func (t *Table) Roles() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.grants))
	for role := range t.grants {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// Permissions returns a sorted copy of the role's permission set.
// Unknown roles yield an empty result.
func (t *Table) Permissions(role string) []string {
	if t == nil {
		return nil
	}
	set := t.grants[CanonicalRole(role)]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasPermission decides whether role holds permission. Wildcards are only expanded
// on table entries, never on the permission being checked.
func (t *Table) HasPermission(role, permission string) bool {
	if t == nil {
		return false
	}
	set := t.grants[CanonicalRole(role)]
	if len(set) == 0 {
		return false
	}
	if _, ok := set[Wildcard]; ok {
		return true
	}
	if _, ok := set[permission]; ok {
		return true
	}
	for p := range set {
		if !strings.HasSuffix(p, ":*") {
			continue
		}
		if strings.HasPrefix(permission, strings.TrimSuffix(p, "*")) {
			return true
		}
	}
	return false
}

// Allows reports whether any of roles holds any of permissions.
func (t *Table) Allows(roles []string, permissions ...string) bool {
	for _, role := range roles {
		for _, p := range permissions {
			if t.HasPermission(role, p) {
				return true
			}
		}
	}
	return false
}

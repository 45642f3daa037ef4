// Package rbac expands role names into permission sets using a static
// table built once at startup. There is no precedence logic: a user's
// permissions are the plain union over their roles.
package rbac

import (
	"sort"
	"strings"
)

// Well-known roles, permissions, and authorization policies.
const (
	RoleSuperAdmin = "SUPER_ADMIN"

	PermissionSuperAdmin = "SUPER_ADMIN"

	PolicySuperAdmin = "SUPER_ADMIN_POLICY"
)

// DefaultTable returns the process-wide role→permissions mapping.
func DefaultTable() map[string][]string {
	return map[string][]string{
		// SUPER_ADMIN gives access to everything.
		RoleSuperAdmin: {PermissionSuperAdmin},
	}
}

// DefaultPolicies maps named authorization policies to the single
// permission each one requires.
func DefaultPolicies() map[string]string {
	return map[string]string{
		PolicySuperAdmin: PermissionSuperAdmin,
	}
}

// PermissionSet is a set of permission identifiers.
type PermissionSet map[string]struct{}

func (s PermissionSet) Has(permission string) bool {
	_, ok := s[permission]
	return ok
}

// List returns the permissions in sorted order.
func (s PermissionSet) List() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Resolver answers role→permission lookups against an immutable table.
// Construct it once at startup; it is safe for concurrent use.
type Resolver struct {
	roles map[string][]string
}

// NewResolver copies the table so later mutation of the argument cannot
// change resolution results.
func NewResolver(table map[string][]string) *Resolver {
	roles := make(map[string][]string, len(table))
	for role, permissions := range table {
		roles[role] = append([]string(nil), permissions...)
	}
	return &Resolver{roles: roles}
}

// PermissionsFor returns the permissions granted by a single role. Unknown
// roles yield an empty slice, never nil and never an error.
func (r *Resolver) PermissionsFor(role string) []string {
	permissions, ok := r.roles[role]
	if !ok {
		return []string{}
	}
	return append([]string(nil), permissions...)
}

// ExpandRoles unions the permissions of every role in the list. Role names
// are trimmed and empty entries skipped, matching how roles are persisted
// as a comma-delimited string.
func (r *Resolver) ExpandRoles(roles []string) PermissionSet {
	set := make(PermissionSet)
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		for _, permission := range r.roles[role] {
			set[permission] = struct{}{}
		}
	}
	return set
}

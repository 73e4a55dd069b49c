// Package security defines roles, per-module grants and the access checks built on them.
package security

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"

	"trackiq/internal/core/entity"
)

// Role of a user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSupervisor Role = "supervisor"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleManager, RoleSupervisor, RoleOperator, RoleViewer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// Module is a functional area guarded by grants.
type Module string

const (
	ModuleBrands           Module = "brands"
	ModuleRawMaterials     Module = "raw-materials"
	ModuleFinishedProducts Module = "finished-products"
	ModuleBOM              Module = "bom"
	ModuleProduction       Module = "production"
	ModuleInventory        Module = "inventory"
	ModuleReports          Module = "reports"
	ModuleUsers            Module = "users"
	ModuleSettings         Module = "settings"
)

// Modules lists every module.
var Modules = []Module{
	ModuleBrands, ModuleRawMaterials, ModuleFinishedProducts, ModuleBOM,
	ModuleProduction, ModuleInventory, ModuleReports, ModuleUsers, ModuleSettings,
}

// Action is an operation within a module.
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
)

// Actions lists every action.
var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove}

// Grant is the set of actions a user may perform in one module.
type Grant struct {
	Module  Module   `json:"module"`
	Actions []Action `json:"actions"`
}

// Grants is a user's permission snapshot.
type Grants []Grant

func (g *Grants) Scan(src any) error         { return entity.ScanJSON(src, g) }
func (g Grants) Value() (driver.Value, error) { return entity.JSONValue(g) }

// Allows reports whether the grants contain action on module.
func (g Grants) Allows(module Module, action Action) bool {
	for _, grant := range g {
		if grant.Module == module {
			return slices.Contains(grant.Actions, action)
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate it freely.
func (g Grants) Clone() Grants {
	out := make(Grants, len(g))
	for i, grant := range g {
		out[i] = Grant{Module: grant.Module, Actions: slices.Clone(grant.Actions)}
	}
	return out
}

// Strings flattens grants to "module:action" tokens (used in JWT claims).
func (g Grants) Strings() []string {
	var out []string
	for _, grant := range g {
		for _, a := range grant.Actions {
			out = append(out, PermissionString(grant.Module, a))
		}
	}
	return out
}

// PermissionString formats a single "module:action" token.
func PermissionString(module Module, action Action) string {
	return fmt.Sprintf("%s:%s", module, action)
}

// ParsePermission splits a "module:action" token.
func ParsePermission(s string) (Module, Action, bool) {
	m, a, ok := strings.Cut(s, ":")
	if !ok || m == "" || a == "" {
		return "", "", false
	}
	return Module(m), Action(a), true
}

// HasPermission is the authorization rule: admin is always allowed, every other
// role needs an explicit grant.
func HasPermission(role Role, grants Grants, module Module, action Action) bool {
	if role == RoleAdmin {
		return true
	}
	return grants.Allows(module, action)
}

// GrantsFromStrings rebuilds grants from "module:action" tokens. Malformed
// tokens are skipped.
func GrantsFromStrings(tokens []string) Grants {
	var out Grants
	index := make(map[Module]int)
	for _, t := range tokens {
		m, a, ok := ParsePermission(t)
		if !ok {
			continue
		}
		i, seen := index[m]
		if !seen {
			i = len(out)
			index[m] = i
			out = append(out, Grant{Module: m})
		}
		if !slices.Contains(out[i].Actions, a) {
			out[i].Actions = append(out[i].Actions, a)
		}
	}
	return out
}

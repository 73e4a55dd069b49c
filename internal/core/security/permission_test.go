package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission_AdminAlwaysAllowed(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, nil, ModuleSettings, ActionEdit))
	assert.True(t, HasPermission(RoleAdmin, nil, ModuleUsers, ActionApprove))
}

func TestHasPermission_ViewerDefaults(t *testing.T) {
	grants := DefaultGrants(RoleViewer)

	assert.False(t, HasPermission(RoleViewer, grants, ModuleUsers, ActionDelete))
	assert.True(t, HasPermission(RoleViewer, grants, ModuleInventory, ActionView))
	assert.False(t, HasPermission(RoleViewer, grants, ModuleInventory, ActionCreate))
}

func TestDefaultGrants_Table(t *testing.T) {
	tests := []struct {
		role   Role
		module Module
		action Action
		want   bool
	}{
		{RoleManager, ModuleBOM, ActionApprove, true},
		{RoleManager, ModuleBOM, ActionDelete, false},
		{RoleManager, ModuleUsers, ActionView, false},
		{RoleSupervisor, ModuleRawMaterials, ActionCreate, true},
		{RoleSupervisor, ModuleFinishedProducts, ActionCreate, false},
		{RoleOperator, ModuleProduction, ActionCreate, true},
		{RoleOperator, ModuleInventory, ActionCreate, false},
		{RoleViewer, ModuleReports, ActionView, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.module)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, DefaultGrants(tt.role), tt.module, tt.action))
		})
	}
}

func TestDefaultGrants_IsSnapshot(t *testing.T) {
	g := DefaultGrants(RoleOperator)
	g[0].Actions = append(g[0].Actions, ActionDelete)
	g[0].Actions[0] = ActionApprove

	fresh := DefaultGrants(RoleOperator)
	assert.Equal(t, []Action{ActionView}, fresh[0].Actions)
}

func TestPermissionStrings(t *testing.T) {
	g := Grants{{Module: ModuleBOM, Actions: []Action{ActionView, ActionEdit}}}
	assert.Equal(t, []string{"bom:view", "bom:edit"}, g.Strings())

	m, a, ok := ParsePermission("raw-materials:create")
	require.True(t, ok)
	assert.Equal(t, ModuleRawMaterials, m)
	assert.Equal(t, ActionCreate, a)

	_, _, ok = ParsePermission("broken")
	assert.False(t, ok)
}

func TestGrantsFromStrings_RoundTrip(t *testing.T) {
	grants := DefaultGrants(RoleSupervisor)

	rebuilt := GrantsFromStrings(grants.Strings())
	require.Len(t, rebuilt, len(grants))
	assert.True(t, rebuilt.Allows(ModuleInventory, ActionCreate))
	assert.False(t, rebuilt.Allows(ModuleInventory, ActionDelete))
}

func TestGrantsFromStrings_SkipsMalformed(t *testing.T) {
	g := GrantsFromStrings([]string{"bom:view", "garbage", ":edit", "bom:view", "bom:edit"})

	require.Len(t, g, 1)
	assert.Equal(t, []Action{ActionView, ActionEdit}, g[0].Actions)
}

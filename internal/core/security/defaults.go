package security

// PolicyVersion identifies the current default grant table. Users store the
// version their snapshot was copied from; bump it whenever the table changes.
const PolicyVersion = 1

var (
	all        = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove}
	noApprove  = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}
	manage     = []Action{ActionView, ActionCreate, ActionEdit, ActionApprove}
	viewCreate = []Action{ActionView, ActionCreate}
	viewEdit   = []Action{ActionView, ActionEdit}
	write      = []Action{ActionView, ActionCreate, ActionEdit}
	view       = []Action{ActionView}
)

var defaultGrants = map[Role]Grants{
	RoleAdmin: {
		{ModuleBrands, all},
		{ModuleRawMaterials, all},
		{ModuleFinishedProducts, all},
		{ModuleBOM, all},
		{ModuleProduction, all},
		{ModuleInventory, all},
		{ModuleReports, noApprove},
		{ModuleUsers, noApprove},
		{ModuleSettings, viewEdit},
	},
	RoleManager: {
		{ModuleBrands, manage},
		{ModuleRawMaterials, manage},
		{ModuleFinishedProducts, manage},
		{ModuleBOM, manage},
		{ModuleProduction, manage},
		{ModuleInventory, manage},
		{ModuleReports, viewCreate},
	},
	RoleSupervisor: {
		{ModuleRawMaterials, write},
		{ModuleFinishedProducts, viewEdit},
		{ModuleBOM, viewEdit},
		{ModuleProduction, write},
		{ModuleInventory, write},
		{ModuleReports, view},
	},
	RoleOperator: {
		{ModuleRawMaterials, view},
		{ModuleFinishedProducts, view},
		{ModuleBOM, view},
		{ModuleProduction, viewCreate},
		{ModuleInventory, view},
	},
	RoleViewer: {
		{ModuleRawMaterials, view},
		{ModuleFinishedProducts, view},
		{ModuleBOM, view},
		{ModuleProduction, view},
		{ModuleInventory, view},
		{ModuleReports, view},
	},
}

// DefaultGrants returns a fresh copy of the role's default grants. The copy is
// what gets stored on a user; later edits to the table do not reach it.
func DefaultGrants(role Role) Grants {
	return defaultGrants[role].Clone()
}

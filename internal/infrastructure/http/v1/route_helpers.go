package v1

import (
	"github.com/gin-gonic/gin"

	"trackiq/internal/core/security"
	"trackiq/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RouteGuards are the access checks of a CRUD resource. A nil guard lets every
// authenticated user through.
type RouteGuards struct {
	Read   gin.HandlerFunc
	Create gin.HandlerFunc
	Update gin.HandlerFunc
	Delete gin.HandlerFunc
}

// PermissionGuards guards a resource with the module's view/create/edit/delete grants.
func PermissionGuards(module security.Module) RouteGuards {
	return RouteGuards{
		Read:   middleware.RequirePermission(module, security.ActionView),
		Create: middleware.RequirePermission(module, security.ActionCreate),
		Update: middleware.RequirePermission(module, security.ActionEdit),
		Delete: middleware.RequirePermission(module, security.ActionDelete),
	}
}

// RoleGuards lets any authenticated user read and only roles mutate.
func RoleGuards(roles ...string) RouteGuards {
	mutate := middleware.RequireRole(roles...)
	return RouteGuards{Create: mutate, Update: mutate, Delete: mutate}
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
//
// Usage:
//
//	handler := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[...]{...})
//	RegisterCatalogRoutes(api.Group("/raw-materials"), handler, PermissionGuards(security.ModuleRawMaterials))
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, g RouteGuards) {
	group.GET("", guarded(g.Read, handler.List)...)
	group.POST("", guarded(g.Create, handler.Create)...)
	group.GET("/:id", guarded(g.Read, handler.Get)...)
	group.PUT("/:id", guarded(g.Update, handler.Update)...)
	group.DELETE("/:id", guarded(g.Delete, handler.Delete)...)
}

func guarded(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}

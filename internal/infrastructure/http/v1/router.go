// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"trackiq/internal/config"
	"trackiq/internal/core/apperror"
	"trackiq/internal/core/security"
	"trackiq/internal/domain/auth"
	"trackiq/internal/domain/bom"
	"trackiq/internal/domain/catalogs/brand"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
	"trackiq/internal/domain/reports"
	"trackiq/internal/infrastructure/http/v1/dto"
	"trackiq/internal/infrastructure/http/v1/handlers"
	"trackiq/internal/infrastructure/http/v1/middleware"
	"trackiq/internal/infrastructure/http/v1/validation"
	"trackiq/pkg/logger"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Auth         *auth.Service
	Brands       *brand.Service
	RawMaterials *rawmaterial.Service
	Products     *product.Service
	BOMs         *bom.Service
	Productions  *production.Service
	Inventory    *inventory.Service
	Reports      *reports.Service
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	Config   *config.Config
	Logger   *logger.Logger
	Database handlers.Pinger
	Audit    handlers.AuditHistory
	Services Services
}

// auditedEntities maps the /audit/:entity segment to the stored entity type.
var auditedEntities = map[string]string{
	"brands":            "Brand",
	"raw-materials":     "RawMaterial",
	"finished-products": "FinishedProduct",
	"boms":              "BOM",
	"productions":       "Production",
	"inventory":         "Inventory",
	"users":             "User",
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Setup()

	router := gin.New()

	// Global middleware (order matters: Recovery sits inside ErrorHandler so
	// a recovered panic is rendered like any other error)
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler(cfg.Config.IsProduction()))
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.Config.CORSOrigins))

	health := handlers.NewHealthHandler(cfg.Database, cfg.Config.Env)
	router.GET("/health", health.Live)
	router.GET("/health/ready", health.Ready)

	base := handlers.NewBaseHandler().WithPaging(cfg.Config.PageDefault, cfg.Config.PageMax)
	svc := cfg.Services

	api := router.Group("/api/v1")
	registerAuthRoutes(api, base, svc.Auth)

	protected := api.Group("")
	protected.Use(middleware.Auth(svc.Auth))

	registerCatalogRoutes(protected, base, svc)
	registerBOMRoutes(protected, base, svc.BOMs)
	registerProductionRoutes(protected, base, svc.Productions)
	registerInventoryRoutes(protected, base, svc.Inventory, svc.Reports)
	registerReportRoutes(protected, base, svc.Reports)
	registerUserRoutes(protected, base, svc.Auth)

	if cfg.Audit != nil {
		audit := handlers.NewAuditHandler(base, cfg.Audit, auditedEntities)
		protected.GET("/audit/:entity/:id", middleware.RequirePermission(security.ModuleSettings, security.ActionView), audit.History)
	}

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("route "+c.Request.URL.Path, nil))
	})

	return router
}

func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *auth.Service) {
	h := handlers.NewAuthHandler(base, service)

	group := rg.Group("/auth")
	group.POST("/login", h.Login)

	authed := group.Group("")
	authed.Use(middleware.Auth(service))
	authed.GET("/me", h.Me)
	authed.POST("/change-password", h.ChangePassword)
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc Services) {
	brands := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*brand.Brand, dto.CreateBrandRequest, dto.UpdateBrandRequest]{
		Service:    svc.Brands.CatalogService,
		EntityName: "Brand",
		MapCreateDTO: func(req *dto.CreateBrandRequest) (*brand.Brand, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req *dto.UpdateBrandRequest, b *brand.Brand) error {
			req.ApplyTo(b)
			return nil
		},
		MapToDTO: func(b *brand.Brand) any { return dto.FromBrand(b) },
	})
	RegisterCatalogRoutes(rg.Group("/brands"), brands, RoleGuards(string(security.RoleAdmin)))

	materials := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*rawmaterial.RawMaterial, dto.CreateRawMaterialRequest, dto.UpdateRawMaterialRequest]{
		Service:      svc.RawMaterials.CatalogService,
		EntityName:   "Raw material",
		MapCreateDTO: (*dto.CreateRawMaterialRequest).ToEntity,
		MapUpdateDTO: func(req *dto.UpdateRawMaterialRequest, m *rawmaterial.RawMaterial) error {
			req.ApplyTo(m)
			return nil
		},
		MapToDTO: func(m *rawmaterial.RawMaterial) any { return dto.FromRawMaterial(m) },
	})
	RegisterCatalogRoutes(rg.Group("/raw-materials"), materials, PermissionGuards(security.ModuleRawMaterials))

	products := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*product.FinishedProduct, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:      svc.Products.CatalogService,
		EntityName:   "Finished product",
		MapCreateDTO: (*dto.CreateProductRequest).ToEntity,
		MapUpdateDTO: func(req *dto.UpdateProductRequest, p *product.FinishedProduct) error {
			req.ApplyTo(p)
			return nil
		},
		MapToDTO: func(p *product.FinishedProduct) any { return dto.FromProduct(p) },
	})
	RegisterCatalogRoutes(rg.Group("/finished-products"), products, PermissionGuards(security.ModuleFinishedProducts))
}

func registerBOMRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *bom.Service) {
	h := handlers.NewBOMHandler(base, service)
	g := PermissionGuards(security.ModuleBOM)

	group := rg.Group("/boms")
	RegisterCatalogRoutes(group, h, g)
	group.GET("/:id/requirements", g.Read, h.Requirements)
	group.GET("/:id/availability", g.Read, h.Availability)
	group.POST("/:id/status", middleware.RequirePermission(security.ModuleBOM, security.ActionApprove), h.ChangeStatus)
	group.POST("/:id/recalculate", g.Update, h.Recalculate)
}

func registerProductionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *production.Service) {
	h := handlers.NewProductionHandler(base, service)
	g := PermissionGuards(security.ModuleProduction)

	group := rg.Group("/productions")
	group.GET("/summary", g.Read, h.Summary)
	RegisterCatalogRoutes(group, h, g)
	group.GET("/:id/completion-check", g.Read, h.CompletionCheck)
	group.POST("/:id/status", g.Update, h.ChangeStatus)
}

func registerInventoryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *inventory.Service, reportService *reports.Service) {
	h := handlers.NewInventoryHandler(base, service, reportService)
	g := PermissionGuards(security.ModuleInventory)

	group := rg.Group("/inventory")
	group.GET("", g.Read, h.List)
	group.POST("/transactions", g.Create, h.AppendTransaction)
	group.GET("/low-stock", g.Read, h.LowStock)
	group.GET("/value", g.Read, h.Value)
	group.GET("/export", middleware.RequirePermission(security.ModuleReports, security.ActionView), h.Export)
	group.GET("/:id", g.Read, h.Get)
	group.GET("/:id/transactions", g.Read, h.Transactions)
	group.GET("/:id/reconcile", g.Read, h.Reconcile)
	group.PUT("/:id/limits", g.Update, h.SetLimits)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *reports.Service) {
	h := handlers.NewReportsHandler(base, service)
	view := middleware.RequirePermission(security.ModuleReports, security.ActionView)

	group := rg.Group("/reports")
	group.GET("/production-summary", view, h.ProductionSummary)
	group.GET("/production-summary/export", view, h.ExportProductionSummary)
	group.GET("/inventory-value", view, h.InventoryValue)
	group.GET("/low-stock", view, h.LowStock)
}

func registerUserRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service *auth.Service) {
	h := handlers.NewUserHandler(base, service)
	g := PermissionGuards(security.ModuleUsers)

	group := rg.Group("/users")
	RegisterCatalogRoutes(group, h, g)
	group.POST("/:id/permissions/resync", g.Update, h.ResyncPermissions)
}

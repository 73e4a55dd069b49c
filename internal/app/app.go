// Package app assembles the storage, domain services and HTTP router shared
// by the trackiq binaries.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"trackiq/internal/config"
	"trackiq/internal/domain/audit"
	"trackiq/internal/domain/auth"
	"trackiq/internal/domain/bom"
	"trackiq/internal/domain/catalogs/brand"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
	"trackiq/internal/domain/reports"
	v1 "trackiq/internal/infrastructure/http/v1"
	"trackiq/internal/infrastructure/numerator"
	"trackiq/internal/infrastructure/storage/postgres"
	"trackiq/internal/infrastructure/storage/postgres/auth_repo"
	"trackiq/internal/infrastructure/storage/postgres/catalog_repo"
	"trackiq/internal/infrastructure/storage/postgres/document_repo"
	"trackiq/internal/infrastructure/storage/postgres/inventory_repo"
	"trackiq/internal/infrastructure/storage/postgres/report_repo"
	"trackiq/pkg/logger"
)

// App holds the connected pool and every domain service.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Pool     *postgres.Pool
	TxM      *postgres.TxManager
	Audit    *postgres.AuditStore
	Services v1.Services
}

// New connects to PostgreSQL and wires the services.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL, cfg.DBMaxConns))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	txm := postgres.NewTxManager(pool)
	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		pool.Close()
		return nil, err
	}

	a := &App{
		Config: cfg,
		Logger: log,
		Pool:   pool,
		TxM:    txm,
		Audit:  auditStore,
	}
	a.Services = wire(cfg, txm, auditStore)
	return a, nil
}

func wire(cfg *config.Config, txm *postgres.TxManager, rec audit.Recorder) v1.Services {
	// repositories
	brandRepo := catalog_repo.NewBrandRepo(txm)
	materialRepo := catalog_repo.NewRawMaterialRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	bomRepo := document_repo.NewBOMRepo(txm)
	productionRepo := document_repo.NewProductionRepo(txm)
	inventoryRepo := inventory_repo.NewInventoryRepo(txm)
	userRepo := auth_repo.NewUserRepo(txm)
	reportRepo := report_repo.NewReportRepo(txm, inventoryRepo, productionRepo)

	// catalogs
	brands := brand.NewService(brandRepo, txm)
	audit.Attach(brands.Hooks(), rec, brands.EntityName())

	materials := rawmaterial.NewService(materialRepo, txm, brands).
		GuardUnit(inventory.Tracked{Repo: inventoryRepo, Type: inventory.ItemRawMaterial})
	audit.Attach(materials.Hooks(), rec, materials.EntityName())

	products := product.NewService(productRepo, txm, brands).
		GuardPackaging(inventory.Tracked{Repo: inventoryRepo, Type: inventory.ItemFinishedProduct})
	audit.Attach(products.Hooks(), rec, products.EntityName())

	// documents and ledger
	boms := bom.NewService(bomRepo, txm, materials, products, rec)

	stock := inventory.NewService(inventoryRepo, txm, inventory.Items{
		inventory.ItemRawMaterial:     inventory.RawMaterials(materials),
		inventory.ItemFinishedProduct: inventory.FinishedProducts(products),
	}, brands, rec)

	productions := production.NewService(production.ServiceConfig{
		Repo:      productionRepo,
		TxManager: txm,
		Numerator: numerator.New(func(ctx context.Context) numerator.Querier {
			return txm.GetQuerier(ctx)
		}),
		BOMs:   boms,
		Brands: brands,
		Stock:  stock,
		Audit:  rec,
	})

	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.JWTExpiresIn
	users := auth.NewService(userRepo, txm, auth.NewJWTService(jwtConfig), rec, auth.DefaultServiceConfig())

	return v1.Services{
		Auth:         users,
		Brands:       brands,
		RawMaterials: materials,
		Products:     products,
		BOMs:         boms,
		Productions:  productions,
		Inventory:    stock,
		Reports:      reports.NewService(reportRepo),
	}
}

// Router builds the HTTP handler.
func (a *App) Router() *gin.Engine {
	return v1.NewRouter(v1.RouterConfig{
		Config:   a.Config,
		Logger:   a.Logger,
		Database: a.Pool,
		Audit:    a.Audit,
		Services: a.Services,
	})
}

// Close releases the pool.
func (a *App) Close() {
	a.Pool.Close()
}

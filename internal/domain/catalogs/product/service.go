package product

import (
	"context"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/tx"
	"trackiq/internal/domain"
)

// BrandChecker verifies a brand can own new records.
type BrandChecker interface {
	CheckActive(ctx context.Context, brandID id.ID) error
}

// StockLedger reports whether stock movements of an item are on record.
type StockLedger interface {
	Tracked(ctx context.Context, itemID id.ID) (bool, error)
}

// Service provides business logic for the FinishedProduct catalog.
type Service struct {
	*domain.CatalogService[*FinishedProduct]
	repo Repository
}

// NewService creates a new FinishedProduct service.
func NewService(repo Repository, txm tx.Manager, brands BrandChecker) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*FinishedProduct]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "FinishedProduct",
	})

	svc := &Service{CatalogService: base, repo: repo}
	if brands != nil {
		base.Hooks().OnBeforeCreate(func(ctx context.Context, p *FinishedProduct) error {
			return brands.CheckActive(ctx, p.BrandID)
		})
	}
	return svc
}

// GuardPackaging refuses unitsPerPackage changes for products the ledger
// already counts; the stored carton split would no longer add up.
func (s *Service) GuardPackaging(ledger StockLedger) *Service {
	s.Hooks().OnBeforeUpdate(func(ctx context.Context, p *FinishedProduct) error {
		stored, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if stored.UnitsPerPackage == p.UnitsPerPackage {
			return nil
		}
		tracked, err := ledger.Tracked(ctx, p.ID)
		if err != nil {
			return err
		}
		if tracked {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"units per package cannot change once stock of the product is recorded").
				WithDetail("unitsPerPackage", stored.UnitsPerPackage)
		}
		return nil
	})
	return s
}

// SetStockPieces stores a ledger balance (in pieces) as cartons plus loose pieces.
func (s *Service) SetStockPieces(ctx context.Context, productID id.ID, total int64) error {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	p.SetStockPieces(total)
	return s.repo.SetStock(ctx, productID, p.InStockPieces, p.InStockCartons)
}

package rawmaterial

import (
	"context"

	"github.com/shopspring/decimal"

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

// Service provides business logic for the RawMaterial catalog.
type Service struct {
	*domain.CatalogService[*RawMaterial]
	repo Repository
}

// NewService creates a new RawMaterial service.
func NewService(repo Repository, txm tx.Manager, brands BrandChecker) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*RawMaterial]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "RawMaterial",
	})

	svc := &Service{CatalogService: base, repo: repo}
	if brands != nil {
		base.Hooks().OnBeforeCreate(func(ctx context.Context, m *RawMaterial) error {
			return brands.CheckActive(ctx, m.BrandID)
		})
	}

	return svc
}

// GuardUnit refuses unit changes for materials the ledger already counts,
// since recorded balances would be read in the new unit.
func (s *Service) GuardUnit(ledger StockLedger) *Service {
	s.Hooks().OnBeforeUpdate(func(ctx context.Context, m *RawMaterial) error {
		stored, err := s.repo.GetByID(ctx, m.ID)
		if err != nil {
			return err
		}
		if stored.Unit == m.Unit {
			return nil
		}
		tracked, err := ledger.Tracked(ctx, m.ID)
		if err != nil {
			return err
		}
		if tracked {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"unit cannot change once stock of the material is recorded").
				WithDetail("unit", string(stored.Unit))
		}
		return nil
	})
	return s
}

// GetByIDs loads several materials keyed by id.
func (s *Service) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*RawMaterial, error) {
	if len(ids) == 0 {
		return map[id.ID]*RawMaterial{}, nil
	}
	return s.repo.GetByIDs(ctx, ids)
}

// SetStock updates the stock projection from the inventory ledger.
func (s *Service) SetStock(ctx context.Context, materialID id.ID, current decimal.Decimal) error {
	return s.repo.SetStock(ctx, materialID, current)
}

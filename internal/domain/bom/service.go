package bom

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/tx"
	"trackiq/internal/domain"
	"trackiq/internal/domain/audit"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
)

const entityName = "BOM"

// MaterialSource loads raw materials by id.
type MaterialSource interface {
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*rawmaterial.RawMaterial, error)
}

// ProductSource loads finished products.
type ProductSource interface {
	GetByID(ctx context.Context, productID id.ID) (*product.FinishedProduct, error)
}

// Service provides BOM business logic.
type Service struct {
	repo      Repository
	txManager tx.Manager
	materials MaterialSource
	products  ProductSource
	audit     audit.Recorder
}

// NewService creates a BOM service.
func NewService(repo Repository, txm tx.Manager, materials MaterialSource, products ProductSource, rec audit.Recorder) *Service {
	if txm == nil {
		txm = tx.Nop{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{repo: repo, txManager: txm, materials: materials, products: products, audit: rec}
}

// Create validates, prices and stores a new BOM. The brand defaults to the product's brand.
func (s *Service) Create(ctx context.Context, b *BOM) error {
	if uid, ok := domain.CurrentUserID(ctx); ok {
		b.SetCreatedBy(uid)
	}
	if b.Revision == "" {
		b.Revision = DefaultRevision
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	if err := s.attachProduct(ctx, b); err != nil {
		return err
	}
	if err := b.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkRevision(ctx, b); err != nil {
			return err
		}
		if err := s.reprice(ctx, b); err != nil {
			return err
		}
		if b.Status == StatusActive {
			if err := s.repo.ArchiveActive(ctx, b.ProductID, b.BrandID, b.ID); err != nil {
				return fmt.Errorf("archive previous BOM: %w", err)
			}
		}
		if err := s.repo.Create(ctx, b); err != nil {
			return fmt.Errorf("create BOM: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	audit.Safe(ctx, s.audit, entityName, b.ID, audit.ActionCreate, b)
	return nil
}

// Get loads a BOM.
func (s *Service) Get(ctx context.Context, bomID id.ID) (*BOM, error) {
	b, err := s.repo.GetByID(ctx, bomID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, bomID.String())
		}
		return nil, err
	}
	if b.IsDeleted() {
		return nil, apperror.NewNotFound(entityName, bomID.String())
	}
	return b, nil
}

// List returns BOMs matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*BOM], error) {
	filter.Normalize(domain.DefaultPageSize, domain.MaxPageSize)
	return s.repo.List(ctx, filter)
}

// Update stores edited fields and re-prices the material list. Status changes
// go through ChangeStatus.
func (s *Service) Update(ctx context.Context, b *BOM) error {
	current, err := s.Get(ctx, b.ID)
	if err != nil {
		return err
	}
	if b.Status != current.Status {
		return apperror.NewFieldValidation("status", "use the status endpoint to change status")
	}
	if b.ProductID != current.ProductID {
		return apperror.NewFieldValidation("product", "cannot be changed")
	}

	b.Touch()
	if uid, ok := domain.CurrentUserID(ctx); ok {
		b.SetUpdatedBy(uid)
	}
	if err := b.Validate(ctx); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if b.Revision != current.Revision || b.BrandID != current.BrandID {
			if err := s.checkRevision(ctx, b); err != nil {
				return err
			}
		}
		if err := s.reprice(ctx, b); err != nil {
			return err
		}
		return s.repo.Update(ctx, b)
	})
	if err != nil {
		return err
	}

	audit.Safe(ctx, s.audit, entityName, b.ID, audit.ActionUpdate, b)
	return nil
}

// Delete soft-deletes a BOM. Active BOMs must be archived first.
func (s *Service) Delete(ctx context.Context, bomID id.ID) error {
	b, err := s.Get(ctx, bomID)
	if err != nil {
		return err
	}
	if b.Status == StatusActive {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "Active BOM cannot be deleted; archive it first")
	}
	if err := s.repo.SetDeletionMark(ctx, bomID, true); err != nil {
		return err
	}
	audit.Safe(ctx, s.audit, entityName, bomID, audit.ActionDelete, b)
	return nil
}

// ChangeStatus moves a BOM along its status graph. Activating a BOM archives
// the product's previously active BOM in the same transaction.
func (s *Service) ChangeStatus(ctx context.Context, bomID id.ID, to Status) (*BOM, error) {
	var out *BOM
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.Get(ctx, bomID)
		if err != nil {
			return err
		}
		if err := Transitions.Check(entityName, b.Status, to); err != nil {
			return err
		}
		if b.Status == to {
			out = b
			return nil
		}
		if to == StatusActive {
			if len(b.Materials) == 0 {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule, "BOM without materials cannot be activated")
			}
			if err := s.repo.ArchiveActive(ctx, b.ProductID, b.BrandID, b.ID); err != nil {
				return fmt.Errorf("archive previous BOM: %w", err)
			}
		}
		b.Status = to
		b.Touch()
		if uid, ok := domain.CurrentUserID(ctx); ok {
			b.SetUpdatedBy(uid)
		}
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	audit.Safe(ctx, s.audit, entityName, bomID, audit.ActionStatus, out)
	return out, nil
}

// Recalculate re-prices a BOM against current material costs and stores it.
func (s *Service) Recalculate(ctx context.Context, bomID id.ID) (*BOM, error) {
	var out *BOM
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.Get(ctx, bomID)
		if err != nil {
			return err
		}
		if err := s.reprice(ctx, b); err != nil {
			return err
		}
		b.Touch()
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Requirements returns the material quantities for a production run of qty units.
func (s *Service) Requirements(ctx context.Context, bomID id.ID, qty decimal.Decimal) ([]Requirement, error) {
	b, err := s.Get(ctx, bomID)
	if err != nil {
		return nil, err
	}
	return MaterialsNeeded(b, qty)
}

// Availability lists the shortages for a production run of qty units.
func (s *Service) Availability(ctx context.Context, bomID id.ID, qty decimal.Decimal) ([]Shortage, error) {
	b, err := s.Get(ctx, bomID)
	if err != nil {
		return nil, err
	}
	return s.Shortages(ctx, b, qty)
}

// Shortages checks an already loaded BOM against current stock.
func (s *Service) Shortages(ctx context.Context, b *BOM, qty decimal.Decimal) ([]Shortage, error) {
	mats, err := s.lookup(ctx, b.Materials.MaterialIDs())
	if err != nil {
		return nil, err
	}
	return CheckAvailability(b, qty, mats.formula())
}

func (s *Service) reprice(ctx context.Context, b *BOM) error {
	mats, err := s.lookup(ctx, b.Materials.MaterialIDs())
	if err != nil {
		return err
	}
	for i, line := range b.Materials {
		m, ok := mats[line.MaterialID]
		if !ok {
			continue
		}
		if m.brandID != b.BrandID {
			return apperror.NewFieldValidation(fmt.Sprintf("materials[%d].material", i), "material belongs to another brand")
		}
	}
	_, err = RecomputeMaterialCost(b, mats.formula())
	return err
}

// checkRevision keeps (product, brand, revision) unique among live BOMs.
// The uq_boms_revision index backs this up under concurrent writers.
func (s *Service) checkRevision(ctx context.Context, b *BOM) error {
	other, err := s.repo.FindRevision(ctx, b.ProductID, b.BrandID, b.Revision)
	switch {
	case apperror.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case other.ID == b.ID:
		return nil
	}
	return apperror.NewDuplicate(entityName, "revision", b.Revision)
}

func (s *Service) attachProduct(ctx context.Context, b *BOM) error {
	if id.IsNil(b.ProductID) {
		return apperror.NewFieldValidation("product", "is required")
	}
	p, err := s.products.GetByID(ctx, b.ProductID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewFieldValidation("product", "product not found")
		}
		return err
	}
	if id.IsNil(b.BrandID) {
		b.BrandID = p.BrandID
	}
	if b.BrandID != p.BrandID {
		return apperror.NewFieldValidation("brand", "does not match the product's brand")
	}
	return nil
}

type materialRow struct {
	Material
	brandID id.ID
}

type materialRows map[id.ID]materialRow

func (m materialRows) formula() Materials {
	out := make(Materials, len(m))
	for k, v := range m {
		out[k] = v.Material
	}
	return out
}

func (s *Service) lookup(ctx context.Context, ids []id.ID) (materialRows, error) {
	out := make(materialRows, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.materials.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	for mid, m := range found {
		if m.DeletionMark {
			continue
		}
		out[mid] = materialRow{
			Material: Material{
				Code:        m.Code,
				Name:        m.Name,
				Unit:        m.Unit,
				CostPerUnit: m.CostPerUnit,
				Available:   m.StockCurrent,
			},
			brandID: m.BrandID,
		}
	}
	return out, nil
}

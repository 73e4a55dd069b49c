package production

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/numerator"
	"trackiq/internal/core/tx"
	"trackiq/internal/domain"
	"trackiq/internal/domain/audit"
	"trackiq/internal/domain/bom"
	"trackiq/internal/domain/inventory"
	"trackiq/pkg/logger"
)

const entityName = "Production"

var tracer = otel.Tracer("trackiq/production")

// BOMSource loads BOMs.
type BOMSource interface {
	Get(ctx context.Context, bomID id.ID) (*bom.BOM, error)
}

// BrandChecker verifies a brand can own new records.
type BrandChecker interface {
	CheckActive(ctx context.Context, brandID id.ID) error
}

// StockPoster appends inventory transactions.
type StockPoster interface {
	Append(ctx context.Context, p inventory.Posting) (*inventory.Inventory, *inventory.Transaction, error)
}

// ServiceConfig wires the production service.
type ServiceConfig struct {
	Repo      Repository
	TxManager tx.Manager
	Numerator numerator.Generator
	BOMs      BOMSource
	Brands    BrandChecker
	Stock     StockPoster
	Audit     audit.Recorder
}

// Service provides production business logic.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numerator numerator.Generator
	boms      BOMSource
	brands    BrandChecker
	stock     StockPoster
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a production service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:      cfg.Repo,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		boms:      cfg.BOMs,
		brands:    cfg.Brands,
		stock:     cfg.Stock,
		audit:     cfg.Audit,
		now:       time.Now,
	}
	if s.txManager == nil {
		s.txManager = tx.Nop{}
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	return s
}

// Create assigns the next batch number and stores a planned batch.
func (s *Service) Create(ctx context.Context, p *Production) error {
	if uid, ok := domain.CurrentUserID(ctx); ok {
		p.SetCreatedBy(uid)
	}
	if p.Status == "" {
		p.Status = StatusPlanned
	}
	if p.Status != StatusPlanned {
		return apperror.NewFieldValidation("status", "a new batch must be planned")
	}

	b, err := s.boms.Get(ctx, p.BOMID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewFieldValidation("bom", "BOM not found")
		}
		return err
	}
	if id.IsNil(p.ProductID) {
		p.ProductID = b.ProductID
	}
	if id.IsNil(p.BrandID) {
		p.BrandID = b.BrandID
	}
	if b.ProductID != p.ProductID || b.BrandID != p.BrandID {
		return apperror.NewFieldValidation("bom", "BOM belongs to another product or brand")
	}
	if b.Status == bom.StatusArchived {
		return apperror.NewFieldValidation("bom", "BOM is archived")
	}

	s.normalize(p)
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if s.brands != nil {
			if err := s.brands.CheckActive(ctx, p.BrandID); err != nil {
				return err
			}
		}
		number, err := s.numerator.Next(ctx, numerator.BatchNumberConfig(), s.now())
		if err != nil {
			return fmt.Errorf("generate batch number: %w", err)
		}
		p.BatchNumber = number
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create production: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "production created", "id", p.ID.String(), "batch", p.BatchNumber)
	audit.Safe(ctx, s.audit, entityName, p.ID, audit.ActionCreate, p)
	return nil
}

// Get loads a batch.
func (s *Service) Get(ctx context.Context, productionID id.ID) (*Production, error) {
	p, err := s.repo.GetByID(ctx, productionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, productionID.String())
		}
		return nil, err
	}
	if p.IsDeleted() {
		return nil, apperror.NewNotFound(entityName, productionID.String())
	}
	return p, nil
}

// List returns batches matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Production], error) {
	filter.Normalize(domain.DefaultPageSize, domain.MaxPageSize)
	return s.repo.List(ctx, filter)
}

// Update stores edited fields. Identity fields, the batch number and the
// status are kept from the stored record.
func (s *Service) Update(ctx context.Context, p *Production) error {
	current, err := s.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	if current.Status.Terminal() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			fmt.Sprintf("Production %s is %s and can no longer be edited", current.BatchNumber, current.Status))
	}
	if p.Status != "" && p.Status != current.Status {
		return apperror.NewFieldValidation("status", "use the status endpoint to change status")
	}
	p.Status = current.Status
	p.BatchNumber = current.BatchNumber
	p.BrandID = current.BrandID
	p.ProductID = current.ProductID
	p.BOMID = current.BOMID
	p.CreatedAt = current.CreatedAt
	p.CreatedBy = current.CreatedBy
	if current.Status != StatusPlanned && current.Status != StatusInProgress {
		// stock was posted at completion
		p.Materials = current.Materials
		p.ProducedQty = current.ProducedQty
		p.RejectedQty = current.RejectedQty
	}

	p.Touch()
	if uid, ok := domain.CurrentUserID(ctx); ok {
		p.SetUpdatedBy(uid)
	}
	s.normalize(p)
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	audit.Safe(ctx, s.audit, entityName, p.ID, audit.ActionUpdate, p)
	return nil
}

// Delete soft-deletes a planned or rejected batch.
func (s *Service) Delete(ctx context.Context, productionID id.ID) error {
	p, err := s.Get(ctx, productionID)
	if err != nil {
		return err
	}
	if p.Status != StatusPlanned && p.Status != StatusRejected {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"Only planned or rejected batches can be deleted")
	}
	if err := s.repo.SetDeletionMark(ctx, productionID, true); err != nil {
		return err
	}
	audit.Safe(ctx, s.audit, entityName, productionID, audit.ActionDelete, p)
	return nil
}

// CompletionCheck returns the issues blocking approval of a batch.
func (s *Service) CompletionCheck(ctx context.Context, productionID id.ID) ([]string, error) {
	p, err := s.Get(ctx, productionID)
	if err != nil {
		return nil, err
	}
	return s.completionIssues(ctx, p)
}

func (s *Service) completionIssues(ctx context.Context, p *Production) ([]string, error) {
	var planned []id.ID
	b, err := s.boms.Get(ctx, p.BOMID)
	switch {
	case err == nil:
		planned = b.Materials.MaterialIDs()
	case apperror.IsNotFound(err):
		// BOM gone; only the quantity and quality checks apply
	default:
		return nil, err
	}
	return ValidateCompletion(p, planned), nil
}

// ChangeStatus moves a batch along its status graph.
//
// Entering in-progress stamps the actual start. Entering completed stamps the
// actual end and, in the same transaction, posts production-use for every
// consumed material and production-output for the good units; a stock
// shortage aborts the whole transition. Entering approved requires a clean
// completion check.
func (s *Service) ChangeStatus(ctx context.Context, productionID id.ID, to Status) (*Production, error) {
	ctx, span := tracer.Start(ctx, "production.ChangeStatus")
	defer span.End()
	span.SetAttributes(attribute.String("production_id", productionID.String()), attribute.String("to", string(to)))

	var out *Production
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.Get(ctx, productionID)
		if err != nil {
			return err
		}
		if err := Transitions.Check(entityName, p.Status, to); err != nil {
			return err
		}
		if p.Status == to {
			out = p
			return nil
		}

		now := s.now()
		switch to {
		case StatusInProgress:
			if p.ActualStart == nil {
				p.ActualStart = &now
			}
		case StatusCompleted:
			if p.ProducedQty == 0 {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule, "No production quantity recorded")
			}
			p.ActualEnd = &now
			if err := s.postStock(ctx, p); err != nil {
				return err
			}
		case StatusApproved:
			issues, err := s.completionIssues(ctx, p)
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule, "Production cannot be approved").
					WithDetail("issues", issues)
			}
		}

		p.Status = to
		p.Touch()
		if uid, ok := domain.CurrentUserID(ctx); ok {
			p.SetUpdatedBy(uid)
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "production status changed", "batch", out.BatchNumber, "status", string(out.Status))
	audit.Safe(ctx, s.audit, entityName, productionID, audit.ActionStatus, out)
	return out, nil
}

func (s *Service) postStock(ctx context.Context, p *Production) error {
	for _, m := range p.Materials {
		qty := m.Consumed()
		if !qty.IsPositive() {
			continue
		}
		_, _, err := s.stock.Append(ctx, inventory.Posting{
			ItemType:        inventory.ItemRawMaterial,
			ItemID:          m.MaterialID,
			BrandID:         p.BrandID,
			Type:            inventory.TxProductionUse,
			Quantity:        qty,
			Unit:            m.Unit,
			ReferenceType:   inventory.RefProduction,
			ReferenceNumber: p.BatchNumber,
		})
		if err != nil {
			return fmt.Errorf("consume material %s: %w", m.MaterialID, err)
		}
	}

	good := p.GoodUnits()
	if good <= 0 {
		return nil
	}
	manufactured := s.now()
	if p.ActualEnd != nil {
		manufactured = *p.ActualEnd
	}
	_, _, err := s.stock.Append(ctx, inventory.Posting{
		ItemType:          inventory.ItemFinishedProduct,
		ItemID:            p.ProductID,
		BrandID:           p.BrandID,
		Type:              inventory.TxProductionOutput,
		Quantity:          decimal.NewFromInt(good),
		ReferenceType:     inventory.RefProduction,
		ReferenceNumber:   p.BatchNumber,
		BatchNumber:       p.BatchNumber,
		ManufacturingDate: &manufactured,
		CostPerUnit:       p.TotalCost().Div(decimal.NewFromInt(good)),
	})
	if err != nil {
		return fmt.Errorf("receive output: %w", err)
	}
	return nil
}

// Summary aggregates batches per product over a date range.
func (s *Service) Summary(ctx context.Context, filter SummaryFilter) ([]SummaryRow, error) {
	if filter.To.IsZero() {
		filter.To = s.now()
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, -1, 0)
	}
	if filter.To.Before(filter.From) {
		return nil, apperror.NewFieldValidation("to", "must not be before from")
	}
	return s.repo.Summary(ctx, filter)
}

func (s *Service) normalize(p *Production) {
	now := s.now()
	for i := range p.QualityChecks {
		if p.QualityChecks[i].CheckedAt.IsZero() {
			p.QualityChecks[i].CheckedAt = now
		}
	}
	for i := range p.Issues {
		if p.Issues[i].Status == "" {
			p.Issues[i].Status = "open"
		}
		if p.Issues[i].ReportedAt.IsZero() {
			p.Issues[i].ReportedAt = now
		}
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.Recompute()
}

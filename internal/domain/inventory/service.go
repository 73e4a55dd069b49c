package inventory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/tx"
	"trackiq/internal/domain"
	"trackiq/internal/domain/audit"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/pkg/logger"
)

const entityName = "Inventory"

var tracer = otel.Tracer("trackiq/inventory")

// BrandChecker verifies a brand can own new records.
type BrandChecker interface {
	CheckActive(ctx context.Context, brandID id.ID) error
}

// Posting is a request to append one transaction.
type Posting struct {
	ItemType ItemType
	ItemID   id.ID
	// BrandID defaults to the item's brand
	BrandID id.ID

	Type     TxType
	Quantity decimal.Decimal
	// Unit defaults to the record's unit
	Unit unit.Unit

	ReferenceType   ReferenceType
	ReferenceNumber string

	BatchNumber       string
	ManufacturingDate *time.Time
	ExpiryDate        *time.Time

	LocationFrom string
	LocationTo   string

	CostPerUnit decimal.Decimal
	Notes       string
}

// Service appends to the ledger and keeps catalog stock in step with it.
type Service struct {
	repo      Repository
	txManager tx.Manager
	items     Items
	brands    BrandChecker
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates an inventory service.
func NewService(repo Repository, txm tx.Manager, items Items, brands BrandChecker, rec audit.Recorder) *Service {
	if txm == nil {
		txm = tx.Nop{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		txManager: txm,
		items:     items,
		brands:    brands,
		audit:     rec,
		now:       time.Now,
	}
}

// Append posts one transaction. The record is created on the first posting for
// an item. The balance, the transaction row and the catalog projection are
// written in one transaction; a posting that would make stock negative fails
// with INSUFFICIENT_STOCK and writes nothing.
func (s *Service) Append(ctx context.Context, p Posting) (*Inventory, *Transaction, error) {
	ctx, span := tracer.Start(ctx, "inventory.Append")
	defer span.End()
	span.SetAttributes(
		attribute.String("item_type", string(p.ItemType)),
		attribute.String("item_id", p.ItemID.String()),
		attribute.String("tx_type", string(p.Type)),
	)

	var (
		inv *Inventory
		txn *Transaction
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.items.Resolve(ctx, p.ItemType, p.ItemID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewFieldValidation("item", "item not found")
			}
			return err
		}
		brandID := p.BrandID
		if id.IsNil(brandID) {
			brandID = item.BrandID
		}
		if brandID != item.BrandID {
			return apperror.NewFieldValidation("brand", "does not match the item's brand")
		}

		inv, err = s.lockOrCreate(ctx, item, brandID)
		if err != nil {
			return err
		}

		txn, err = s.newTransaction(ctx, inv, p)
		if err != nil {
			return err
		}
		if err := Apply(inv, txn, s.now()); err != nil {
			return err
		}

		inv.Touch()
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}
		if err := s.repo.AddTransaction(ctx, txn); err != nil {
			return fmt.Errorf("add transaction: %w", err)
		}
		return s.items.SyncStock(ctx, inv.ItemType, inv.ItemID, inv.CurrentStock)
	})
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	logger.Info(ctx, "inventory posted",
		"inventory_id", inv.ID.String(),
		"type", string(txn.Type),
		"quantity", txn.Quantity.String(),
		"balance", inv.CurrentStock.String(),
	)
	audit.Safe(ctx, s.audit, entityName, inv.ID, audit.ActionPost, txn)
	return inv, txn, nil
}

func (s *Service) lockOrCreate(ctx context.Context, item Item, brandID id.ID) (*Inventory, error) {
	inv, err := s.repo.LockByItem(ctx, item.Type, item.ID, brandID)
	if err == nil {
		return inv, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	if s.brands != nil {
		if err := s.brands.CheckActive(ctx, brandID); err != nil {
			return nil, err
		}
	}
	inv = NewInventory(item.Type, item.ID, brandID, item.Unit)
	inv.ReorderPoint = item.Minimum
	inv.Minimum = item.Minimum
	if uid, ok := domain.CurrentUserID(ctx); ok {
		inv.SetCreatedBy(uid)
	}
	// a concurrent first posting may insert the same record; either way the
	// row exists afterwards and the lock below serializes the postings
	if err := s.repo.EnsureRecord(ctx, inv); err != nil {
		return nil, fmt.Errorf("create inventory: %w", err)
	}
	return s.repo.LockByItem(ctx, item.Type, item.ID, brandID)
}

func (s *Service) newTransaction(ctx context.Context, inv *Inventory, p Posting) (*Transaction, error) {
	qty := p.Quantity
	if p.Unit != "" && p.Unit != inv.Unit {
		converted, err := unit.Convert(p.Quantity, p.Unit, inv.Unit)
		if err != nil {
			return nil, apperror.NewFieldValidation("quantity.unit",
				fmt.Sprintf("cannot post %s against stock kept in %s", p.Unit, inv.Unit))
		}
		qty = converted
	}
	costPerUnit := p.CostPerUnit
	if p.Unit != "" && p.Unit != inv.Unit && costPerUnit.IsPositive() && qty.IsPositive() {
		// keep the total cost when the quantity changes unit
		costPerUnit = costPerUnit.Mul(p.Quantity).Div(qty)
	}

	t := &Transaction{
		ID:                id.New(),
		Type:              p.Type,
		Quantity:          qty,
		ReferenceType:     p.ReferenceType,
		ReferenceNumber:   p.ReferenceNumber,
		BatchNumber:       p.BatchNumber,
		ManufacturingDate: p.ManufacturingDate,
		ExpiryDate:        p.ExpiryDate,
		LocationFrom:      p.LocationFrom,
		LocationTo:        p.LocationTo,
		CostPerUnit:       costPerUnit,
		Notes:             p.Notes,
	}
	if uid, ok := domain.CurrentUserID(ctx); ok {
		t.PerformedBy = &uid
	}
	return t, nil
}

// Get loads an inventory record.
func (s *Service) Get(ctx context.Context, inventoryID id.ID) (*Inventory, error) {
	inv, err := s.repo.GetByID(ctx, inventoryID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, inventoryID.String())
		}
		return nil, err
	}
	return inv, nil
}

// List returns inventory records matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Inventory], error) {
	filter.Normalize(domain.DefaultPageSize, domain.MaxPageSize)
	if filter.ItemType != "" && !filter.ItemType.Valid() {
		return domain.ListResult[*Inventory]{}, apperror.NewFieldValidation("itemType", "must be raw-material or finished-product")
	}
	return s.repo.List(ctx, filter)
}

// Transactions returns the ledger of one record, newest first.
func (s *Service) Transactions(ctx context.Context, inventoryID id.ID, limit, offset int) (domain.ListResult[*Transaction], error) {
	if _, err := s.Get(ctx, inventoryID); err != nil {
		return domain.ListResult[*Transaction]{}, err
	}
	f := domain.ListFilter{Limit: limit, Offset: offset}
	f.Normalize(domain.DefaultPageSize, domain.MaxPageSize)
	return s.repo.ListTransactions(ctx, inventoryID, f.Limit, f.Offset)
}

// Reconciliation compares a record with a replay of its ledger.
type Reconciliation struct {
	InventoryID     id.ID           `json:"inventoryId"`
	Transactions    int64           `json:"transactions"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ReplayedBalance decimal.Decimal `json:"replayedBalance"`
	StoredAverage   decimal.Decimal `json:"storedAverage"`
	ReplayedAverage decimal.Decimal `json:"replayedAverage"`
	Consistent      bool            `json:"consistent"`
}

const reconcilePage = 500

// Reconcile replays every transaction of a record and reports whether the
// stored balance and moving average still match.
func (s *Service) Reconcile(ctx context.Context, inventoryID id.ID) (*Reconciliation, error) {
	inv, err := s.Get(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	var history []Transaction
	for offset := 0; ; offset += reconcilePage {
		page, err := s.repo.ListTransactions(ctx, inventoryID, reconcilePage, offset)
		if err != nil {
			return nil, err
		}
		for _, t := range page.Items {
			history = append(history, *t)
		}
		if len(page.Items) < reconcilePage || int64(len(history)) >= page.TotalCount {
			break
		}
	}
	// pages come newest first
	slices.Reverse(history)

	r := &Reconciliation{
		InventoryID:     inventoryID,
		Transactions:    int64(len(history)),
		StoredBalance:   inv.CurrentStock,
		ReplayedBalance: Replay(history),
		StoredAverage:   inv.AverageCost,
		ReplayedAverage: AverageCost(history),
	}
	r.Consistent = r.StoredBalance.Equal(r.ReplayedBalance) && r.StoredAverage.Equal(r.ReplayedAverage)
	if !r.Consistent {
		logger.Warn(ctx, "inventory ledger mismatch",
			"inventory_id", inventoryID.String(),
			"stored_balance", r.StoredBalance.String(),
			"replayed_balance", r.ReplayedBalance.String(),
		)
	}
	return r, nil
}

// SetLimits replaces the replenishment thresholds of a record.
func (s *Service) SetLimits(ctx context.Context, inventoryID id.ID, version int, limits Limits) (*Inventory, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	var out *Inventory
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.Get(ctx, inventoryID)
		if err != nil {
			return err
		}
		if version > 0 && version != inv.Version {
			return apperror.NewConcurrentModification(entityName, inventoryID.String())
		}
		inv.SetLimits(limits)
		inv.Touch()
		if uid, ok := domain.CurrentUserID(ctx); ok {
			inv.SetUpdatedBy(uid)
		}
		if err := s.repo.Update(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	audit.Safe(ctx, s.audit, entityName, inventoryID, audit.ActionUpdate, out)
	return out, nil
}

// LowStock lists records at or below their reorder point, optionally for one brand.
func (s *Service) LowStock(ctx context.Context, brandID *id.ID) ([]*Inventory, error) {
	return s.repo.LowStock(ctx, brandID)
}

// Value sums stock value per item type.
func (s *Service) Value(ctx context.Context, brandID *id.ID) ([]ValueSummary, error) {
	return s.repo.ValueByType(ctx, brandID)
}

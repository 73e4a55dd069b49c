package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/catalogs/unit"
)

// Item is the catalog view of a stocked item.
type Item struct {
	Type        ItemType
	ID          id.ID
	BrandID     id.ID
	Code        string
	Name        string
	Unit        unit.Unit
	CostPerUnit decimal.Decimal
	Minimum     decimal.Decimal
}

// ItemSource resolves one item type and receives its balance projection.
type ItemSource interface {
	Resolve(ctx context.Context, itemID id.ID) (Item, error)
	SyncStock(ctx context.Context, itemID id.ID, balance decimal.Decimal) error
}

// Items dispatches by item type.
type Items map[ItemType]ItemSource

func (it Items) source(t ItemType) (ItemSource, error) {
	src, ok := it[t]
	if !ok {
		return nil, apperror.NewFieldValidation("itemType", "must be raw-material or finished-product")
	}
	return src, nil
}

// Resolve loads the item behind (t, itemID).
func (it Items) Resolve(ctx context.Context, t ItemType, itemID id.ID) (Item, error) {
	src, err := it.source(t)
	if err != nil {
		return Item{}, err
	}
	return src.Resolve(ctx, itemID)
}

// SyncStock writes the balance back to the item's catalog record.
func (it Items) SyncStock(ctx context.Context, t ItemType, itemID id.ID, balance decimal.Decimal) error {
	src, err := it.source(t)
	if err != nil {
		return err
	}
	return src.SyncStock(ctx, itemID, balance)
}

// RawMaterialStore is what the raw material adapter needs.
type RawMaterialStore interface {
	GetByID(ctx context.Context, materialID id.ID) (*rawmaterial.RawMaterial, error)
	SetStock(ctx context.Context, materialID id.ID, current decimal.Decimal) error
}

// ProductStore is what the finished product adapter needs.
type ProductStore interface {
	GetByID(ctx context.Context, productID id.ID) (*product.FinishedProduct, error)
	SetStockPieces(ctx context.Context, productID id.ID, total int64) error
}

type rawMaterials struct{ store RawMaterialStore }

// RawMaterials adapts the raw material catalog to ItemSource.
func RawMaterials(store RawMaterialStore) ItemSource {
	return rawMaterials{store: store}
}

func (r rawMaterials) Resolve(ctx context.Context, itemID id.ID) (Item, error) {
	m, err := r.store.GetByID(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if m.IsDeleted() {
		return Item{}, apperror.NewNotFound("RawMaterial", itemID.String())
	}
	return Item{
		Type:        ItemRawMaterial,
		ID:          m.ID,
		BrandID:     m.BrandID,
		Code:        m.Code,
		Name:        m.Name,
		Unit:        m.Unit,
		CostPerUnit: m.CostPerUnit,
		Minimum:     m.StockMinimum,
	}, nil
}

func (r rawMaterials) SyncStock(ctx context.Context, itemID id.ID, balance decimal.Decimal) error {
	return r.store.SetStock(ctx, itemID, balance)
}

type products struct{ store ProductStore }

// FinishedProducts adapts the finished product catalog to ItemSource.
// Product stock is counted in whole pieces.
func FinishedProducts(store ProductStore) ItemSource {
	return products{store: store}
}

func (p products) Resolve(ctx context.Context, itemID id.ID) (Item, error) {
	fp, err := p.store.GetByID(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if fp.IsDeleted() {
		return Item{}, apperror.NewNotFound("FinishedProduct", itemID.String())
	}
	return Item{
		Type:        ItemFinishedProduct,
		ID:          fp.ID,
		BrandID:     fp.BrandID,
		Code:        fp.Code,
		Name:        fp.Name,
		Unit:        unit.Pieces,
		CostPerUnit: fp.ManufacturingCost,
		Minimum:     decimal.NewFromInt(fp.MinimumPiecesEquivalent()),
	}, nil
}

func (p products) SyncStock(ctx context.Context, itemID id.ID, balance decimal.Decimal) error {
	if !balance.IsInteger() {
		return apperror.NewFieldValidation("quantity.value", fmt.Sprintf("finished product stock must be whole pieces, got %s", balance))
	}
	return p.store.SetStockPieces(ctx, itemID, balance.IntPart())
}

// Tracked answers the catalogs' "is this item on the ledger" question for
// one item type.
type Tracked struct {
	Repo Repository
	Type ItemType
}

func (t Tracked) Tracked(ctx context.Context, itemID id.ID) (bool, error) {
	return t.Repo.HasRecord(ctx, t.Type, itemID)
}

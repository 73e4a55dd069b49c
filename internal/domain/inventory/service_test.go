package inventory

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/internal/domain/domaintest"
)

type memRepo struct {
	mu   sync.Mutex
	rows map[id.ID]Inventory
	txns []Transaction
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[id.ID]Inventory)}
}

func (r *memRepo) EnsureRecord(_ context.Context, inv *Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ItemType == inv.ItemType && row.ItemID == inv.ItemID && row.BrandID == inv.BrandID {
			return nil
		}
	}
	r.rows[inv.ID] = *inv
	return nil
}

func (r *memRepo) HasRecord(_ context.Context, itemType ItemType, itemID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ItemType == itemType && row.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) GetByID(_ context.Context, inventoryID id.ID) (*Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[inventoryID]
	if !ok {
		return nil, apperror.NewNotFound(entityName, inventoryID.String())
	}
	return &row, nil
}

func (r *memRepo) LockByItem(_ context.Context, itemType ItemType, itemID, brandID id.ID) (*Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ItemType == itemType && row.ItemID == itemID && row.BrandID == brandID {
			return &row, nil
		}
	}
	return nil, apperror.NewNotFound(entityName, itemID.String())
}

func (r *memRepo) Update(_ context.Context, inv *Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[inv.ID]
	if !ok {
		return apperror.NewNotFound(entityName, inv.ID.String())
	}
	if row.Version != inv.Version {
		return apperror.NewConcurrentModification(entityName, inv.ID.String())
	}
	inv.Version++
	r.rows[inv.ID] = *inv
	return nil
}

func (r *memRepo) AddTransaction(_ context.Context, t *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, *t)
	return nil
}

func (r *memRepo) ListTransactions(_ context.Context, inventoryID id.ID, limit, offset int) (domain.ListResult[*Transaction], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*Transaction
	for i := len(r.txns) - 1; i >= 0; i-- {
		if r.txns[i].InventoryID == inventoryID {
			t := r.txns[i]
			all = append(all, &t)
		}
	}
	res := domain.ListResult[*Transaction]{TotalCount: int64(len(all)), Limit: limit, Offset: offset}
	start := min(offset, len(all))
	res.Items = all[start:min(start+limit, len(all))]
	return res, nil
}

func (r *memRepo) List(_ context.Context, f ListFilter) (domain.ListResult[*Inventory], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*Inventory
	for _, row := range r.rows {
		if f.ItemType != "" && row.ItemType != f.ItemType {
			continue
		}
		all = append(all, &row)
	}
	return domain.ListResult[*Inventory]{Items: all, TotalCount: int64(len(all))}, nil
}

func (r *memRepo) LowStock(_ context.Context, brandID *id.ID) ([]*Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Inventory
	for _, row := range r.rows {
		if brandID != nil && row.BrandID != *brandID {
			continue
		}
		if row.IsLow() {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *memRepo) ValueByType(_ context.Context, _ *id.ID) ([]ValueSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := map[ItemType]*ValueSummary{}
	for _, row := range r.rows {
		s, ok := sums[row.ItemType]
		if !ok {
			s = &ValueSummary{ItemType: row.ItemType}
			sums[row.ItemType] = s
		}
		s.Items++
		s.TotalValue = s.TotalValue.Add(row.TotalValue)
	}
	out := make([]ValueSummary, 0, len(sums))
	for _, s := range sums {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemType < out[j].ItemType })
	return out, nil
}

type materialStore struct {
	items map[id.ID]*rawmaterial.RawMaterial
}

func (s *materialStore) GetByID(_ context.Context, materialID id.ID) (*rawmaterial.RawMaterial, error) {
	m, ok := s.items[materialID]
	if !ok {
		return nil, apperror.NewNotFound("RawMaterial", materialID.String())
	}
	return m, nil
}

func (s *materialStore) SetStock(_ context.Context, materialID id.ID, current decimal.Decimal) error {
	s.items[materialID].StockCurrent = current
	return nil
}

type productStore struct {
	items map[id.ID]*product.FinishedProduct
}

func (s *productStore) GetByID(_ context.Context, productID id.ID) (*product.FinishedProduct, error) {
	p, ok := s.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("FinishedProduct", productID.String())
	}
	return p, nil
}

func (s *productStore) SetStockPieces(_ context.Context, productID id.ID, total int64) error {
	s.items[productID].SetStockPieces(total)
	return nil
}

type fixture struct {
	svc      *Service
	repo     *memRepo
	brandID  id.ID
	material *rawmaterial.RawMaterial
	product  *product.FinishedProduct
}

func newFixture() *fixture {
	brandID := id.New()
	m := rawmaterial.NewRawMaterial(brandID, "RM-001", "Oats", unit.Kilogram)
	m.CostPerUnit = d("2.5")
	m.StockMinimum = d("20")
	p := product.NewFinishedProduct(brandID, "FP-001", "Granola 500g")
	p.UnitsPerPackage = 12

	repo := newMemRepo()
	items := Items{
		ItemRawMaterial:     RawMaterials(&materialStore{items: map[id.ID]*rawmaterial.RawMaterial{m.ID: m}}),
		ItemFinishedProduct: FinishedProducts(&productStore{items: map[id.ID]*product.FinishedProduct{p.ID: p}}),
	}
	return &fixture{
		svc:      NewService(repo, nil, items, nil, nil),
		repo:     repo,
		brandID:  brandID,
		material: m,
		product:  p,
	}
}

func TestAppend_ProductScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	in := func(typ TxType, qty string) Posting {
		return Posting{ItemType: ItemFinishedProduct, ItemID: f.product.ID, Type: typ, Quantity: d(qty)}
	}

	_, _, err := f.svc.Append(ctx, in(TxIn, "100"))
	require.NoError(t, err)
	inv, _, err := f.svc.Append(ctx, in(TxOut, "30"))
	require.NoError(t, err)
	assert.True(t, d("70").Equal(inv.CurrentStock))

	_, _, err = f.svc.Append(ctx, in(TxOut, "1000"))
	assert.True(t, apperror.IsInsufficientStock(err))

	got, err := f.svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, d("70").Equal(got.CurrentStock))
	assert.Len(t, f.repo.txns, 2)

	// 70 pieces at 12 per carton
	assert.Equal(t, int64(5), f.product.InStockCartons)
	assert.Equal(t, int64(10), f.product.InStockPieces)
}

func TestAppend_MaterialProjectionAndDefaults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inv, txn, err := f.svc.Append(ctx, Posting{
		ItemType:    ItemRawMaterial,
		ItemID:      f.material.ID,
		Type:        TxIn,
		Quantity:    d("1000"),
		CostPerUnit: d("2.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, f.brandID, inv.BrandID)
	assert.Equal(t, unit.Kilogram, inv.Unit)
	assert.True(t, d("20").Equal(inv.ReorderPoint))
	assert.True(t, d("2500").Equal(txn.CostTotal))
	assert.True(t, d("1000").Equal(f.material.StockCurrent))
}

func TestAppend_ConvertsUnits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inv, txn, err := f.svc.Append(ctx, Posting{
		ItemType:    ItemRawMaterial,
		ItemID:      f.material.ID,
		Type:        TxIn,
		Quantity:    d("500"),
		Unit:        unit.Gram,
		CostPerUnit: d("0.004"),
	})
	require.NoError(t, err)
	assert.True(t, d("0.5").Equal(inv.CurrentStock))
	assert.True(t, d("2").Equal(txn.CostTotal), txn.CostTotal.String())

	_, _, err = f.svc.Append(ctx, Posting{
		ItemType: ItemRawMaterial,
		ItemID:   f.material.ID,
		Type:     TxIn,
		Quantity: d("1"),
		Unit:     unit.Liter,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestAppend_RejectsForeignBrandAndUnknownItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _, err := f.svc.Append(ctx, Posting{
		ItemType: ItemRawMaterial, ItemID: f.material.ID, BrandID: id.New(), Type: TxIn, Quantity: d("1"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, _, err = f.svc.Append(ctx, Posting{
		ItemType: ItemRawMaterial, ItemID: id.New(), Type: TxIn, Quantity: d("1"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, _, err = f.svc.Append(ctx, Posting{
		ItemType: "service", ItemID: f.material.ID, Type: TxIn, Quantity: d("1"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestAppend_FractionalProductRejected(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.Append(context.Background(), Posting{
		ItemType: ItemFinishedProduct, ItemID: f.product.ID, Type: TxIn, Quantity: d("1.5"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestSetLimitsAndLowStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inv, _, err := f.svc.Append(ctx, Posting{
		ItemType: ItemRawMaterial, ItemID: f.material.ID, Type: TxIn, Quantity: d("50"),
	})
	require.NoError(t, err)

	low, err := f.svc.LowStock(ctx, &f.brandID)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = f.svc.SetLimits(ctx, inv.ID, 0, Limits{Minimum: d("10"), Maximum: d("5")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.SetLimits(ctx, inv.ID, 0, Limits{Minimum: d("10"), Maximum: d("500"), ReorderPoint: d("60")})
	require.NoError(t, err)

	low, err = f.svc.LowStock(ctx, &f.brandID)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, inv.ID, low[0].ID)

	_, err = f.svc.SetLimits(ctx, inv.ID, 1, Limits{})
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestTransactions_NewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var inv *Inventory
	for _, q := range []string{"5", "6", "7"} {
		var err error
		inv, _, err = f.svc.Append(ctx, Posting{
			ItemType: ItemRawMaterial, ItemID: f.material.ID, Type: TxIn, Quantity: d(q),
		})
		require.NoError(t, err)
	}

	page, err := f.svc.Transactions(ctx, inv.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	require.Len(t, page.Items, 2)
	assert.True(t, d("7").Equal(page.Items[0].Quantity))

	_, err = f.svc.Transactions(ctx, id.New(), 10, 0)
	assert.True(t, apperror.IsNotFound(err))
}

// racingRepo lets another posting create the record between the lookup and
// the insert of the first posting.
type racingRepo struct {
	*memRepo
	winner *Inventory
	raced  bool
}

func (r *racingRepo) LockByItem(ctx context.Context, itemType ItemType, itemID, brandID id.ID) (*Inventory, error) {
	if !r.raced {
		r.raced = true
		_ = r.memRepo.EnsureRecord(ctx, r.winner)
		return nil, apperror.NewNotFound(entityName, itemID.String())
	}
	return r.memRepo.LockByItem(ctx, itemType, itemID, brandID)
}

func TestAppend_FirstPostingJoinsConcurrentRecord(t *testing.T) {
	f := newFixture()
	winner := NewInventory(ItemRawMaterial, f.material.ID, f.brandID, unit.Kilogram)
	winner.CurrentStock = d("40")
	repo := &racingRepo{memRepo: f.repo, winner: winner}
	svc := NewService(repo, nil, Items{
		ItemRawMaterial: RawMaterials(&materialStore{items: map[id.ID]*rawmaterial.RawMaterial{f.material.ID: f.material}}),
	}, nil, nil)

	inv, _, err := svc.Append(context.Background(), Posting{
		ItemType: ItemRawMaterial, ItemID: f.material.ID, Type: TxIn, Quantity: d("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, inv.ID)
	assert.True(t, d("50").Equal(inv.CurrentStock), inv.CurrentStock.String())
	assert.Len(t, f.repo.rows, 1)
}

type catalogMaterials struct {
	*domaintest.CatalogRepo[rawmaterial.RawMaterial, *rawmaterial.RawMaterial]
}

func (c catalogMaterials) GetByIDs(context.Context, []id.ID) (map[id.ID]*rawmaterial.RawMaterial, error) {
	return nil, nil
}

func (c catalogMaterials) SetStock(ctx context.Context, materialID id.ID, current decimal.Decimal) error {
	m, err := c.GetByID(ctx, materialID)
	if err != nil {
		return err
	}
	m.StockCurrent = current
	return c.Update(ctx, m)
}

func TestUnitChangeRefusedOnceStockRecorded(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	materials := rawmaterial.NewService(
		catalogMaterials{domaintest.NewCatalogRepo[rawmaterial.RawMaterial, *rawmaterial.RawMaterial]()}, nil, nil,
	).GuardUnit(Tracked{Repo: repo, Type: ItemRawMaterial})
	svc := NewService(repo, nil, Items{ItemRawMaterial: RawMaterials(materials)}, nil, nil)

	m := rawmaterial.NewRawMaterial(id.New(), "RM-001", "Oats", unit.Kilogram)
	require.NoError(t, materials.Create(ctx, m))

	_, _, err := svc.Append(ctx, Posting{ItemType: ItemRawMaterial, ItemID: m.ID, Type: TxIn, Quantity: d("5")})
	require.NoError(t, err)

	edited, err := materials.GetByID(ctx, m.ID)
	require.NoError(t, err)
	edited.Unit = unit.Gram
	err = materials.Update(ctx, edited)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "got %v", err)

	inv, _, err := svc.Append(ctx, Posting{ItemType: ItemRawMaterial, ItemID: m.ID, Type: TxIn, Quantity: d("1000"), Unit: unit.Gram})
	require.NoError(t, err)
	assert.Equal(t, unit.Kilogram, inv.Unit)
	assert.True(t, d("6").Equal(inv.CurrentStock), inv.CurrentStock.String())

	stored, err := materials.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, unit.Kilogram, stored.Unit)
	assert.True(t, d("6").Equal(stored.StockCurrent))
}

func TestReconcile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var inv *Inventory
	for _, p := range []Posting{
		{Type: TxIn, Quantity: d("100"), CostPerUnit: d("2")},
		{Type: TxOut, Quantity: d("40")},
		{Type: TxIn, Quantity: d("50"), CostPerUnit: d("5")},
	} {
		p.ItemType, p.ItemID = ItemRawMaterial, f.material.ID
		var err error
		inv, _, err = f.svc.Append(ctx, p)
		require.NoError(t, err)
	}

	r, err := f.svc.Reconcile(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, r.Consistent)
	assert.Equal(t, int64(3), r.Transactions)
	assert.True(t, d("110").Equal(r.ReplayedBalance))
	assert.True(t, d("3").Equal(r.ReplayedAverage), r.ReplayedAverage.String())

	// a balance written outside the ledger shows up
	row := f.repo.rows[inv.ID]
	row.CurrentStock = d("90")
	f.repo.rows[inv.ID] = row

	r, err = f.svc.Reconcile(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, r.Consistent)
	assert.True(t, d("90").Equal(r.StoredBalance))

	_, err = f.svc.Reconcile(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

package production

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/numerator"
	"trackiq/internal/domain"
	"trackiq/internal/domain/bom"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/internal/domain/domaintest"
	"trackiq/internal/domain/inventory"
)

type memRepo struct {
	*domaintest.CatalogRepo[Production, *Production]
}

func (r memRepo) List(ctx context.Context, f ListFilter) (domain.ListResult[*Production], error) {
	return r.CatalogRepo.List(ctx, f.ListFilter)
}

func (r memRepo) Summary(context.Context, SummaryFilter) ([]SummaryRow, error) {
	return nil, nil
}

type stubBOMs map[id.ID]*bom.BOM

func (s stubBOMs) Get(_ context.Context, bomID id.ID) (*bom.BOM, error) {
	b, ok := s[bomID]
	if !ok {
		return nil, apperror.NewNotFound("BOM", bomID.String())
	}
	return b, nil
}

type recordingStock struct {
	postings []inventory.Posting
	failOn   inventory.TxType
}

func (r *recordingStock) Append(_ context.Context, p inventory.Posting) (*inventory.Inventory, *inventory.Transaction, error) {
	if p.Type == r.failOn {
		return nil, nil, apperror.NewInsufficientStock(p.ItemID.String(), p.Quantity.String(), "0")
	}
	r.postings = append(r.postings, p)
	return &inventory.Inventory{}, &inventory.Transaction{}, nil
}

type fixture struct {
	svc      *Service
	bom      *bom.BOM
	stock    *recordingStock
	material id.ID
}

func newFixture() *fixture {
	material := id.New()
	b := bom.NewBOM(id.New(), id.New(), "Granola batch", d("100"))
	b.Materials = bom.Lines{{MaterialID: material, Quantity: d("10"), Unit: unit.Kilogram}}

	stock := &recordingStock{}
	repo := memRepo{domaintest.NewCatalogRepo[Production, *Production]()}
	svc := NewService(ServiceConfig{
		Repo:      repo,
		Numerator: numerator.NewMemory(),
		BOMs:      stubBOMs{b.ID: b},
		Stock:     stock,
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, bom: b, stock: stock, material: material}
}

func (f *fixture) newProduction() *Production {
	start := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	return NewProduction(id.Nil(), id.Nil(), f.bom.ID, 500, start, start.Add(8*time.Hour))
}

func TestCreate_AssignsSequentialBatchNumbers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.newProduction()
	require.NoError(t, f.svc.Create(ctx, first))
	second := f.newProduction()
	require.NoError(t, f.svc.Create(ctx, second))

	assert.Equal(t, "202603-0001", first.BatchNumber)
	assert.Equal(t, "202603-0002", second.BatchNumber)
	assert.Equal(t, f.bom.ProductID, first.ProductID)
	assert.Equal(t, f.bom.BrandID, first.BrandID)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.newProduction()
	p.EndDate = p.StartDate
	p.PlannedQty = 0
	err := f.svc.Create(ctx, p)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Len(t, appErr.FieldErrors(), 2)

	p = f.newProduction()
	p.BOMID = id.New()
	assert.True(t, apperror.HasCode(f.svc.Create(ctx, p), apperror.CodeValidation))
}

func TestChangeStatus_CompletionPostsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.newProduction()
	require.NoError(t, f.svc.Create(ctx, p))
	_, err := f.svc.ChangeStatus(ctx, p.ID, StatusInProgress)
	require.NoError(t, err)

	p, err = f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, p.ActualStart)
	p.ProducedQty = 480
	p.RejectedQty = 20
	p.Materials = MaterialUsages{{MaterialID: f.material, QuantityUsed: d("48"), Wastage: d("2"), Unit: unit.Kilogram, Cost: d("125")}}
	require.NoError(t, f.svc.Update(ctx, p))
	assert.True(t, d("125").Equal(p.MaterialsCost))

	done, err := f.svc.ChangeStatus(ctx, p.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.ActualEnd)

	require.Len(t, f.stock.postings, 2)
	use, out := f.stock.postings[0], f.stock.postings[1]
	assert.Equal(t, inventory.TxProductionUse, use.Type)
	assert.True(t, d("50").Equal(use.Quantity))
	assert.Equal(t, inventory.TxProductionOutput, out.Type)
	assert.True(t, d("460").Equal(out.Quantity))
	assert.Equal(t, done.BatchNumber, out.BatchNumber)
	assert.Equal(t, f.bom.ProductID, out.ItemID)
}

func TestChangeStatus_ShortageKeepsStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.stock.failOn = inventory.TxProductionUse

	p := f.newProduction()
	p.ProducedQty = 10
	p.Materials = MaterialUsages{{MaterialID: f.material, QuantityUsed: d("1"), Unit: unit.Kilogram}}
	require.NoError(t, f.svc.Create(ctx, p))
	_, err := f.svc.ChangeStatus(ctx, p.ID, StatusInProgress)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, p.ID, StatusCompleted)
	assert.True(t, apperror.IsInsufficientStock(err))

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
}

func TestChangeStatus_IllegalAndApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.newProduction()
	p.ProducedQty = 10
	p.QualityChecks = QualityChecks{{Parameter: "moisture", Status: CheckFailed, CheckedBy: "qa"}}
	p.Materials = MaterialUsages{{MaterialID: f.material, QuantityUsed: d("1"), Unit: unit.Kilogram}}
	require.NoError(t, f.svc.Create(ctx, p))

	_, err := f.svc.ChangeStatus(ctx, p.ID, StatusApproved)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))

	for _, s := range []Status{StatusInProgress, StatusCompleted, StatusQualityCheck} {
		_, err = f.svc.ChangeStatus(ctx, p.ID, s)
		require.NoError(t, err, s)
	}

	issues, err := f.svc.CompletionCheck(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 quality checks failed"}, issues)

	_, err = f.svc.ChangeStatus(ctx, p.ID, StatusApproved)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))

	rejected, err := f.svc.ChangeStatus(ctx, p.ID, StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)

	rejected.Notes = "late edit"
	assert.Error(t, f.svc.Update(ctx, rejected))
}

func TestDelete_OnlyPlannedOrRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.newProduction()
	require.NoError(t, f.svc.Create(ctx, p))
	_, err := f.svc.ChangeStatus(ctx, p.ID, StatusInProgress)
	require.NoError(t, err)
	assert.Error(t, f.svc.Delete(ctx, p.ID))

	q := f.newProduction()
	require.NoError(t, f.svc.Create(ctx, q))
	require.NoError(t, f.svc.Delete(ctx, q.ID))
	_, err = f.svc.Get(ctx, q.ID)
	assert.True(t, apperror.IsNotFound(err))
}

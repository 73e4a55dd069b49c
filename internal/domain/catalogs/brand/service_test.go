package brand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/domaintest"
)

type fakeRepo struct {
	*domaintest.CatalogRepo[Brand, *Brand]
	deps Dependents
}

func (f *fakeRepo) CountDependents(context.Context, id.ID) (Dependents, error) {
	return f.deps, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{CatalogRepo: domaintest.NewCatalogRepo[Brand, *Brand]()}
	return NewService(repo, nil), repo
}

func TestCreate_NormalizesCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b := NewBrand("eco-001", "EcoFresh Foods")
	require.NoError(t, svc.Create(ctx, b))

	got, err := svc.GetByCode(ctx, "ECO-001")
	require.NoError(t, err)
	assert.Equal(t, "EcoFresh Foods", got.Name)
	assert.Equal(t, StatusActive, got.Status)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()

	b := NewBrand("TOO-LONG-CODE", "")
	b.Status = "paused"
	err := svc.Create(context.Background(), b)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Len(t, appErr.FieldErrors(), 3)
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, NewBrand("ECO-001", "EcoFresh Foods")))
	err := svc.Create(ctx, NewBrand("ECO-001", "Another"))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestDelete_BlockedByDependents(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	b := NewBrand("ECO-001", "EcoFresh Foods")
	require.NoError(t, svc.Create(ctx, b))

	repo.deps = Dependents{RawMaterials: 2}
	err := svc.Delete(ctx, b.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	repo.deps = Dependents{}
	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.GetByCode(ctx, "ECO-001")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate_StaleVersion(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b := NewBrand("ECO-001", "EcoFresh Foods")
	require.NoError(t, svc.Create(ctx, b))

	first, _ := svc.GetByID(ctx, b.ID)
	second, _ := svc.GetByID(ctx, b.ID)

	first.Name = "EcoFresh"
	require.NoError(t, svc.Update(ctx, first))

	second.Name = "Stale"
	err := svc.Update(ctx, second)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestRequireActive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b := NewBrand("OLD", "Old Brand")
	b.Status = StatusInactive
	require.NoError(t, svc.Create(ctx, b))

	_, err := svc.RequireActive(ctx, b.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

package brand

import (
	"context"
	"fmt"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/tx"
	"trackiq/internal/domain"
)

// Service provides business logic for the Brand catalog.
type Service struct {
	*domain.CatalogService[*Brand]
	repo Repository
}

// NewService creates a new Brand service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Brand]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "Brand",
	})

	svc := &Service{CatalogService: base, repo: repo}
	base.Hooks().OnBeforeDelete(svc.ensureNoDependents)

	return svc
}

// ensureNoDependents blocks deletion while anything still references the brand.
func (s *Service) ensureNoDependents(ctx context.Context, b *Brand) error {
	deps, err := s.repo.CountDependents(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("count brand dependents: %w", err)
	}
	if deps.Total() > 0 {
		return apperror.NewConflict("Brand is referenced by other records and cannot be deleted").
			WithDetail("dependents", deps)
	}
	return nil
}

// RequireActive loads a brand and fails if it cannot own new records.
func (s *Service) RequireActive(ctx context.Context, brandID id.ID) (*Brand, error) {
	b, err := s.GetByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if !b.IsActive() {
		return nil, apperror.NewFieldValidation("brand", "brand is not active")
	}
	return b, nil
}

// CheckActive implements the brand check used by brand-scoped catalogs.
func (s *Service) CheckActive(ctx context.Context, brandID id.ID) error {
	_, err := s.RequireActive(ctx, brandID)
	return err
}

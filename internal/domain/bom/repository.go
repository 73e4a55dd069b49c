package bom

import (
	"context"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

// Repository persists BOMs.
type Repository interface {
	Create(ctx context.Context, b *BOM) error
	GetByID(ctx context.Context, bomID id.ID) (*BOM, error)

	// Update writes b with an optimistic lock on b.Version
	Update(ctx context.Context, b *BOM) error

	SetDeletionMark(ctx context.Context, bomID id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*BOM], error)

	// ArchiveActive archives every active BOM of the product except keep.
	ArchiveActive(ctx context.Context, productID, brandID, keep id.ID) error

	// FindActive returns the active BOM of a product, or NotFound.
	FindActive(ctx context.Context, productID, brandID id.ID) (*BOM, error)

	// FindRevision returns the live BOM with the given revision, or NotFound.
	FindRevision(ctx context.Context, productID, brandID id.ID, revision string) (*BOM, error)
}

// ListFilter narrows BOM lists.
type ListFilter struct {
	domain.ListFilter
	ProductID *id.ID
}

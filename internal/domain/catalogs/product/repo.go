package product

import (
	"context"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

// Repository defines the interface for FinishedProduct persistence.
type Repository interface {
	domain.CatalogRepository[*FinishedProduct]

	// SetStock writes the ledger balance projection.
	SetStock(ctx context.Context, productID id.ID, pieces, cartons int64) error
}

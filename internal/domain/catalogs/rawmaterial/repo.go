package rawmaterial

import (
	"context"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

// Repository defines the interface for RawMaterial persistence.
type Repository interface {
	domain.CatalogRepository[*RawMaterial]

	// GetByIDs loads several materials at once; missing ids are absent from the map.
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*RawMaterial, error)

	// SetStock writes the ledger balance projection.
	SetStock(ctx context.Context, materialID id.ID, current decimal.Decimal) error
}

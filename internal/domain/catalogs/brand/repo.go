package brand

import (
	"context"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

// Dependents counts live records that reference a brand.
type Dependents struct {
	RawMaterials     int64 `json:"rawMaterials"`
	FinishedProducts int64 `json:"finishedProducts"`
	BOMs             int64 `json:"boms"`
	Productions      int64 `json:"productions"`
	Inventory        int64 `json:"inventory"`
}

// Total sums all dependent counts.
func (d Dependents) Total() int64 {
	return d.RawMaterials + d.FinishedProducts + d.BOMs + d.Productions + d.Inventory
}

// Repository defines the interface for Brand persistence.
type Repository interface {
	domain.CatalogRepository[*Brand]

	// CountDependents counts non-deleted records referencing the brand.
	CountDependents(ctx context.Context, brandID id.ID) (Dependents, error)
}

package reports

import (
	"context"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
)

// Repository defines report data access interface.
type Repository interface {
	// InventoryItems joins inventory records with item and brand names, ordered by item type and code.
	InventoryItems(ctx context.Context, brandID *id.ID, lowOnly bool) ([]InventoryItem, error)

	ValueByType(ctx context.Context, brandID *id.ID) ([]inventory.ValueSummary, error)
	ProductionSummary(ctx context.Context, filter production.SummaryFilter) ([]production.SummaryRow, error)
}

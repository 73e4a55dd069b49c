package production

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/core/types"
	"trackiq/internal/domain"
)

// ListFilter narrows production lists.
type ListFilter struct {
	domain.ListFilter
	ProductID *id.ID
	From      *time.Time
	To        *time.Time
}

// SummaryRow aggregates the batches of one product in a date range.
type SummaryRow struct {
	ProductID   id.ID           `db:"product_id" json:"productId"`
	ProductCode string          `db:"product_code" json:"productCode"`
	ProductName string          `db:"product_name" json:"productName"`
	Batches     int64           `db:"batches" json:"batches"`
	Planned     int64           `db:"planned" json:"planned"`
	Produced    int64           `db:"produced" json:"produced"`
	Rejected    int64           `db:"rejected" json:"rejected"`
	TotalCost   decimal.Decimal `db:"total_cost" json:"totalCost"`
}

// Efficiency of the aggregated batches in percent.
func (r SummaryRow) Efficiency() decimal.Decimal {
	return types.Percent(decimal.NewFromInt(r.Produced-r.Rejected), decimal.NewFromInt(r.Produced))
}

// SummaryFilter bounds a summary: batches scheduled within [From, To].
type SummaryFilter struct {
	From    time.Time
	To      time.Time
	BrandID *id.ID
}

// Repository persists production batches.
type Repository interface {
	Create(ctx context.Context, p *Production) error
	GetByID(ctx context.Context, productionID id.ID) (*Production, error)

	// Update writes p with an optimistic lock on p.Version
	Update(ctx context.Context, p *Production) error

	SetDeletionMark(ctx context.Context, productionID id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Production], error)
	Summary(ctx context.Context, filter SummaryFilter) ([]SummaryRow, error)
}

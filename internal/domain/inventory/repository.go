package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

// ListFilter narrows inventory lists.
type ListFilter struct {
	domain.ListFilter
	ItemType ItemType
	LowOnly  bool
}

// ValueSummary is stock value grouped by item type.
type ValueSummary struct {
	ItemType   ItemType        `db:"item_type" json:"itemType"`
	Items      int64           `db:"items" json:"items"`
	TotalValue decimal.Decimal `db:"total_value" json:"totalValue"`
}

// Repository persists inventory records and their transactions.
type Repository interface {
	GetByID(ctx context.Context, inventoryID id.ID) (*Inventory, error)

	// LockByItem loads the record of an item with a row lock held until the
	// surrounding transaction ends. NotFound when the item has no record yet.
	LockByItem(ctx context.Context, itemType ItemType, itemID, brandID id.ID) (*Inventory, error)

	// EnsureRecord inserts inv unless the item already has a live record for
	// the brand. An existing record is left untouched.
	EnsureRecord(ctx context.Context, inv *Inventory) error

	// HasRecord reports whether the item has a live record under any brand.
	HasRecord(ctx context.Context, itemType ItemType, itemID id.ID) (bool, error)

	// Update writes inv with an optimistic lock on its version.
	Update(ctx context.Context, inv *Inventory) error

	AddTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, inventoryID id.ID, limit, offset int) (domain.ListResult[*Transaction], error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Inventory], error)

	// LowStock returns records at or below their reorder point.
	LowStock(ctx context.Context, brandID *id.ID) ([]*Inventory, error)

	ValueByType(ctx context.Context, brandID *id.ID) ([]ValueSummary, error)
}

// Package production records manufacturing batches: planned and actual output,
// consumed materials, costs and quality results.
package production

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/unit"
)

// Status of a production batch.
type Status string

const (
	StatusPlanned      Status = "planned"
	StatusInProgress   Status = "in-progress"
	StatusCompleted    Status = "completed"
	StatusQualityCheck Status = "quality-check"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

var statuses = []string{
	string(StatusPlanned), string(StatusInProgress), string(StatusCompleted),
	string(StatusQualityCheck), string(StatusApproved), string(StatusRejected),
}

// Transitions is the production status graph. Approved and rejected are terminal.
var Transitions = entity.Transitions[Status]{
	StatusPlanned:      {StatusInProgress, StatusRejected},
	StatusInProgress:   {StatusCompleted, StatusRejected},
	StatusCompleted:    {StatusQualityCheck},
	StatusQualityCheck: {StatusApproved, StatusRejected},
}

// Terminal reports whether no further change is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// MaterialUsage is a material actually consumed. Cost is captured when the
// line is recorded and is not re-priced later.
type MaterialUsage struct {
	MaterialID   id.ID           `json:"material"`
	QuantityUsed decimal.Decimal `json:"quantityUsed"`
	Unit         unit.Unit       `json:"unit"`
	Wastage      decimal.Decimal `json:"wastage"`
	Cost         decimal.Decimal `json:"cost"`
}

// Consumed is the quantity that leaves stock: used plus wasted.
func (m MaterialUsage) Consumed() decimal.Decimal {
	return m.QuantityUsed.Add(m.Wastage)
}

// MaterialUsages is stored as JSONB.
type MaterialUsages []MaterialUsage

func (m *MaterialUsages) Scan(src any) error         { return entity.ScanJSON(src, m) }
func (m MaterialUsages) Value() (driver.Value, error) { return entity.JSONValue(m) }

// AdditionalCost is an ad-hoc cost item.
type AdditionalCost struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// AdditionalCosts is stored as JSONB.
type AdditionalCosts []AdditionalCost

func (a *AdditionalCosts) Scan(src any) error         { return entity.ScanJSON(src, a) }
func (a AdditionalCosts) Value() (driver.Value, error) { return entity.JSONValue(a) }

// CheckStatus is the outcome of one quality check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckWarning CheckStatus = "warning"
)

// QualityCheck is one measured parameter.
type QualityCheck struct {
	Parameter string      `json:"parameter"`
	Expected  string      `json:"expected,omitempty"`
	Actual    string      `json:"actual,omitempty"`
	Status    CheckStatus `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	CheckedBy string      `json:"checkedBy"`
	CheckedAt time.Time   `json:"checkedAt"`
}

// QualityChecks is stored as JSONB.
type QualityChecks []QualityCheck

func (q *QualityChecks) Scan(src any) error         { return entity.ScanJSON(src, q) }
func (q QualityChecks) Value() (driver.Value, error) { return entity.JSONValue(q) }

// StaffMember is a person assigned to the batch.
type StaffMember struct {
	Name  string          `json:"name"`
	Role  string          `json:"role"`
	Hours decimal.Decimal `json:"hours"`
}

// Staff is stored as JSONB.
type Staff []StaffMember

func (s *Staff) Scan(src any) error         { return entity.ScanJSON(src, s) }
func (s Staff) Value() (driver.Value, error) { return entity.JSONValue(s) }

// Machine is the equipment used.
type Machine struct {
	Name  string          `json:"name,omitempty"`
	Code  string          `json:"code,omitempty"`
	Hours decimal.Decimal `json:"hours"`
}

func (m *Machine) Scan(src any) error         { return entity.ScanJSON(src, m) }
func (m Machine) Value() (driver.Value, error) { return entity.JSONValue(m) }

// Issue is a problem reported during production.
type Issue struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	ReportedBy  string    `json:"reportedBy,omitempty"`
	ReportedAt  time.Time `json:"reportedAt"`
	Resolution  string    `json:"resolution,omitempty"`
}

var (
	issueTypes      = []string{"material", "quality", "machine", "staff", "other"}
	issueSeverities = []string{"low", "medium", "high", "critical"}
	issueStatuses   = []string{"open", "in-progress", "resolved"}
)

// Issues is stored as JSONB.
type Issues []Issue

func (i *Issues) Scan(src any) error         { return entity.ScanJSON(src, i) }
func (i Issues) Value() (driver.Value, error) { return entity.JSONValue(i) }

// Production is one manufacturing batch.
type Production struct {
	entity.BaseEntity

	BatchNumber string `db:"batch_number" json:"batchNumber"`
	BrandID     id.ID  `db:"brand_id" json:"brandId"`
	ProductID   id.ID  `db:"product_id" json:"productId"`
	BOMID       id.ID  `db:"bom_id" json:"bomId"`
	Status      Status `db:"status" json:"status"`

	PlannedQty  int64 `db:"quantity_planned" json:"plannedQuantity"`
	ProducedQty int64 `db:"quantity_produced" json:"producedQuantity"`
	RejectedQty int64 `db:"quantity_rejected" json:"rejectedQuantity"`

	StartDate   time.Time  `db:"start_date" json:"startDate"`
	EndDate     time.Time  `db:"end_date" json:"endDate"`
	ActualStart *time.Time `db:"actual_start" json:"actualStart,omitempty"`
	ActualEnd   *time.Time `db:"actual_end" json:"actualEnd,omitempty"`

	Materials MaterialUsages `db:"materials" json:"materials"`

	// MaterialsCost and LaborCost are derived by Recompute
	MaterialsCost decimal.Decimal `db:"cost_materials" json:"materialsCost"`
	LaborCost     decimal.Decimal `db:"cost_labor" json:"laborCost"`
	OverheadCost  decimal.Decimal `db:"cost_overhead" json:"overheadCost"`
	Additional    AdditionalCosts `db:"cost_additional" json:"additionalCosts"`
	Currency      string          `db:"currency" json:"currency"`

	QualityChecks QualityChecks `db:"quality_checks" json:"qualityChecks"`
	Staff         Staff         `db:"staff" json:"staff"`
	Machine       Machine       `db:"machine" json:"machine"`
	Issues        Issues        `db:"issues" json:"issues"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
}

// NewProduction creates a planned batch. The batch number is assigned on create.
func NewProduction(brandID, productID, bomID id.ID, planned int64, start, end time.Time) *Production {
	return &Production{
		BaseEntity:    entity.NewBaseEntity(),
		BrandID:       brandID,
		ProductID:     productID,
		BOMID:         bomID,
		Status:        StatusPlanned,
		PlannedQty:    planned,
		StartDate:     start,
		EndDate:       end,
		Currency:      "USD",
		Materials:     MaterialUsages{},
		Additional:    AdditionalCosts{},
		QualityChecks: QualityChecks{},
		Staff:         Staff{},
		Issues:        Issues{},
	}
}

// GetBrandID returns the owning brand.
func (p *Production) GetBrandID() id.ID {
	return p.BrandID
}

// GetCode returns the batch number.
func (p *Production) GetCode() string {
	return p.BatchNumber
}

// Validate implements entity.Validatable.
func (p *Production) Validate(ctx context.Context) error {
	var v entity.Violations
	if id.IsNil(p.BrandID) {
		v.Add("brand", "is required")
	}
	if id.IsNil(p.ProductID) {
		v.Add("product", "is required")
	}
	if id.IsNil(p.BOMID) {
		v.Add("bom", "is required")
	}
	v.OneOf("status", string(p.Status), statuses...)
	if p.PlannedQty < 1 {
		v.Add("quantity.planned", "must be at least 1")
	}
	if p.ProducedQty < 0 {
		v.Add("quantity.produced", "must not be negative")
	}
	if p.RejectedQty < 0 {
		v.Add("quantity.rejected", "must not be negative")
	}
	if p.RejectedQty > p.ProducedQty {
		v.Add("quantity.rejected", "must not exceed produced")
	}
	if p.StartDate.IsZero() {
		v.Add("schedule.startDate", "is required")
	}
	if p.EndDate.IsZero() {
		v.Add("schedule.endDate", "is required")
	} else if !p.EndDate.After(p.StartDate) {
		v.Add("schedule.endDate", "must be after the start date")
	}

	for i, m := range p.Materials {
		field := fmt.Sprintf("materials[%d]", i)
		if id.IsNil(m.MaterialID) {
			v.Add(field+".material", "is required")
		}
		if m.QuantityUsed.IsNegative() {
			v.Add(field+".quantityUsed", "must not be negative")
		}
		if m.Wastage.IsNegative() {
			v.Add(field+".wastage", "must not be negative")
		}
		if m.Cost.IsNegative() {
			v.Add(field+".cost", "must not be negative")
		}
		if !m.Unit.Valid() {
			v.Add(field+".unit", "is not a valid unit")
		}
	}
	for i, q := range p.QualityChecks {
		field := fmt.Sprintf("qualityChecks[%d]", i)
		v.Required(field+".parameter", q.Parameter)
		v.Required(field+".checkedBy", q.CheckedBy)
		v.OneOf(field+".status", string(q.Status), string(CheckPassed), string(CheckFailed), string(CheckWarning))
	}
	for i, s := range p.Staff {
		field := fmt.Sprintf("staff[%d]", i)
		v.Required(field+".name", s.Name)
		v.Required(field+".role", s.Role)
		if s.Hours.IsNegative() {
			v.Add(field+".hours", "must not be negative")
		}
	}
	for i, is := range p.Issues {
		field := fmt.Sprintf("issues[%d]", i)
		v.OneOf(field+".type", is.Type, issueTypes...)
		v.Required(field+".description", is.Description)
		v.OneOf(field+".severity", is.Severity, issueSeverities...)
		v.OneOf(field+".status", is.Status, issueStatuses...)
	}
	if p.OverheadCost.IsNegative() {
		v.Add("costs.overhead", "must not be negative")
	}
	return v.Err()
}

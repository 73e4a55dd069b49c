package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/internal/domain/production"
)

// ScheduleDTO is the planned and actual timing of a batch.
type ScheduleDTO struct {
	StartDate   time.Time  `json:"startDate" binding:"required"`
	EndDate     time.Time  `json:"endDate" binding:"required"`
	ActualStart *time.Time `json:"actualStart,omitempty"`
	ActualEnd   *time.Time `json:"actualEnd,omitempty"`
}

// MaterialUsageDTO is a material actually consumed.
type MaterialUsageDTO struct {
	Material     string          `json:"material" binding:"required,uuid"`
	QuantityUsed decimal.Decimal `json:"quantityUsed"`
	Unit         string          `json:"unit" binding:"required,unit"`
	Wastage      decimal.Decimal `json:"wastage"`
	Cost         decimal.Decimal `json:"cost"`
}

// AdditionalCostDTO is an ad-hoc cost item.
type AdditionalCostDTO struct {
	Description string          `json:"description" binding:"required,max=200"`
	Amount      decimal.Decimal `json:"amount"`
}

// CostsRequest carries the non-derived production costs.
type CostsRequest struct {
	Overhead   decimal.Decimal     `json:"overhead"`
	Additional []AdditionalCostDTO `json:"additional" binding:"dive"`
	Currency   string              `json:"currency" binding:"omitempty,len=3"`
}

// QualityCheckDTO is one measured parameter.
type QualityCheckDTO struct {
	Parameter string     `json:"parameter" binding:"required,max=100"`
	Expected  string     `json:"expected"`
	Actual    string     `json:"actual"`
	Status    string     `json:"status" binding:"required,oneof=passed failed warning"`
	Notes     string     `json:"notes" binding:"omitempty,max=500"`
	CheckedBy string     `json:"checkedBy" binding:"required"`
	CheckedAt *time.Time `json:"checkedAt"`
}

// StaffDTO is a person assigned to the batch.
type StaffDTO struct {
	Name  string          `json:"name" binding:"required,max=100"`
	Role  string          `json:"role" binding:"required,max=50"`
	Hours decimal.Decimal `json:"hours"`
}

// MachineDTO is the equipment used.
type MachineDTO struct {
	Name  string          `json:"name" binding:"omitempty,max=100"`
	Code  string          `json:"code" binding:"omitempty,max=50"`
	Hours decimal.Decimal `json:"hours"`
}

// IssueDTO is a problem reported during production.
type IssueDTO struct {
	Type        string `json:"type" binding:"required,oneof=material quality machine staff other"`
	Description string `json:"description" binding:"required,max=500"`
	Severity    string `json:"severity" binding:"required,oneof=low medium high critical"`
	Status      string `json:"status" binding:"omitempty,oneof=open in-progress resolved"`
	ReportedBy  string `json:"reportedBy"`
	Resolution  string `json:"resolution" binding:"omitempty,max=500"`
}

// QuantityDTO is planned and actual output.
type QuantityDTO struct {
	Planned  int64 `json:"planned" binding:"min=1"`
	Produced int64 `json:"produced" binding:"min=0"`
	Rejected int64 `json:"rejected" binding:"min=0"`
}

// --- Request DTOs ---

// ProductionFields are the editable fields of a batch.
type ProductionFields struct {
	Quantity      QuantityDTO        `json:"quantity"`
	Schedule      ScheduleDTO        `json:"schedule"`
	Materials     []MaterialUsageDTO `json:"materials" binding:"dive"`
	Costs         CostsRequest       `json:"costs"`
	QualityChecks []QualityCheckDTO  `json:"qualityChecks" binding:"dive"`
	Staff         []StaffDTO         `json:"staff" binding:"dive"`
	Machine       MachineDTO         `json:"machine"`
	Issues        []IssueDTO         `json:"issues" binding:"dive"`
	Notes         string             `json:"notes" binding:"omitempty,max=1000"`
}

func (f *ProductionFields) apply(p *production.Production) error {
	p.PlannedQty = f.Quantity.Planned
	p.ProducedQty = f.Quantity.Produced
	p.RejectedQty = f.Quantity.Rejected
	p.StartDate = f.Schedule.StartDate
	p.EndDate = f.Schedule.EndDate

	usages := make(production.MaterialUsages, 0, len(f.Materials))
	for _, m := range f.Materials {
		materialID, err := id.ParseField("materials.material", m.Material)
		if err != nil {
			return err
		}
		usages = append(usages, production.MaterialUsage{
			MaterialID:   materialID,
			QuantityUsed: m.QuantityUsed,
			Unit:         unit.Unit(m.Unit),
			Wastage:      m.Wastage,
			Cost:         m.Cost,
		})
	}
	p.Materials = usages

	p.OverheadCost = f.Costs.Overhead
	additional := make(production.AdditionalCosts, 0, len(f.Costs.Additional))
	for _, a := range f.Costs.Additional {
		additional = append(additional, production.AdditionalCost(a))
	}
	p.Additional = additional
	if f.Costs.Currency != "" {
		p.Currency = f.Costs.Currency
	}

	prevChecks, prevIssues := p.QualityChecks, p.Issues

	checks := make(production.QualityChecks, 0, len(f.QualityChecks))
	for i, q := range f.QualityChecks {
		c := production.QualityCheck{
			Parameter: q.Parameter,
			Expected:  q.Expected,
			Actual:    q.Actual,
			Status:    production.CheckStatus(q.Status),
			Notes:     q.Notes,
			CheckedBy: q.CheckedBy,
		}
		switch {
		case q.CheckedAt != nil:
			c.CheckedAt = *q.CheckedAt
		case i < len(prevChecks) && prevChecks[i].Parameter == q.Parameter:
			c.CheckedAt = prevChecks[i].CheckedAt
		}
		checks = append(checks, c)
	}
	p.QualityChecks = checks

	staff := make(production.Staff, 0, len(f.Staff))
	for _, s := range f.Staff {
		staff = append(staff, production.StaffMember(s))
	}
	p.Staff = staff
	p.Machine = production.Machine(f.Machine)

	issues := make(production.Issues, 0, len(f.Issues))
	for i, is := range f.Issues {
		issue := production.Issue{
			Type:        is.Type,
			Description: is.Description,
			Severity:    is.Severity,
			Status:      is.Status,
			ReportedBy:  is.ReportedBy,
			Resolution:  is.Resolution,
		}
		if i < len(prevIssues) && prevIssues[i].Description == is.Description {
			issue.ReportedAt = prevIssues[i].ReportedAt
		}
		issues = append(issues, issue)
	}
	p.Issues = issues
	p.Notes = f.Notes
	return nil
}

// CreateProductionRequest is the request body for planning a batch. Product
// and brand default to the BOM's.
type CreateProductionRequest struct {
	ProductionFields
	BOM     string `json:"bom" binding:"required,uuid"`
	Product string `json:"product" binding:"omitempty,uuid"`
	Brand   string `json:"brand" binding:"omitempty,uuid"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductionRequest) ToEntity() (*production.Production, error) {
	bomID, err := id.ParseField("bom", r.BOM)
	if err != nil {
		return nil, err
	}
	productID, brandID := id.Nil(), id.Nil()
	if r.Product != "" {
		if productID, err = id.ParseField("product", r.Product); err != nil {
			return nil, err
		}
	}
	if r.Brand != "" {
		if brandID, err = id.ParseField("brand", r.Brand); err != nil {
			return nil, err
		}
	}
	p := production.NewProduction(brandID, productID, bomID, r.Quantity.Planned, r.Schedule.StartDate, r.Schedule.EndDate)
	if err := r.apply(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProductionRequest is the request body for editing a batch.
type UpdateProductionRequest struct {
	ProductionFields
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity. Timestamps of quality checks
// and issues resubmitted at the same position are kept.
func (r *UpdateProductionRequest) ApplyTo(p *production.Production) error {
	p.Version = r.Version
	return r.apply(p)
}

// ProductionListQuery adds product and schedule filters to the common list query.
type ProductionListQuery struct {
	ListQuery
	Product string `form:"product" binding:"omitempty,uuid"`
	From    string `form:"from"`
	To      string `form:"to"`
}

// ToProductionFilter converts the query into a production filter.
func (q *ProductionListQuery) ToProductionFilter() (production.ListFilter, error) {
	base, err := q.ToFilter()
	if err != nil {
		return production.ListFilter{}, err
	}
	productID, err := ParseOptionalID("product", q.Product)
	if err != nil {
		return production.ListFilter{}, err
	}
	rng := DateRangeQuery{From: q.From, To: q.To}
	from, to, _, err := rng.Parse()
	if err != nil {
		return production.ListFilter{}, err
	}
	f := production.ListFilter{ListFilter: base, ProductID: productID}
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}
	return f, nil
}

// --- Response DTOs ---

// CostsResponse is the cost breakdown of a batch.
type CostsResponse struct {
	Materials   decimal.Decimal            `json:"materials"`
	Labor       decimal.Decimal            `json:"labor"`
	Overhead    decimal.Decimal            `json:"overhead"`
	Additional  production.AdditionalCosts `json:"additional"`
	Total       decimal.Decimal            `json:"total"`
	CostPerUnit decimal.Decimal            `json:"costPerUnit"`
	Currency    string                     `json:"currency"`
}

// ProductionResponse is the response body for a batch.
type ProductionResponse struct {
	BaseResponse
	BatchNumber   string                    `json:"batchNumber"`
	Product       string                    `json:"product"`
	Brand         string                    `json:"brand"`
	BOM           string                    `json:"bom"`
	Status        production.Status         `json:"status"`
	Quantity      QuantityDTO               `json:"quantity"`
	Schedule      ScheduleDTO               `json:"schedule"`
	Materials     production.MaterialUsages `json:"materials"`
	Costs         CostsResponse             `json:"costs"`
	QualityChecks production.QualityChecks  `json:"qualityChecks"`
	Staff         production.Staff          `json:"staff"`
	Machine       production.Machine        `json:"machine"`
	Issues        production.Issues         `json:"issues"`
	Notes         string                    `json:"notes,omitempty"`
	Efficiency    decimal.Decimal           `json:"efficiency"`
}

// FromProduction creates response DTO from domain entity.
func FromProduction(p *production.Production) ProductionResponse {
	return ProductionResponse{
		BaseResponse: FromBase(p.BaseEntity),
		BatchNumber:  p.BatchNumber,
		Product:      p.ProductID.String(),
		Brand:        p.BrandID.String(),
		BOM:          p.BOMID.String(),
		Status:       p.Status,
		Quantity: QuantityDTO{
			Planned:  p.PlannedQty,
			Produced: p.ProducedQty,
			Rejected: p.RejectedQty,
		},
		Schedule: ScheduleDTO{
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			ActualStart: p.ActualStart,
			ActualEnd:   p.ActualEnd,
		},
		Materials: orEmpty(p.Materials),
		Costs: CostsResponse{
			Materials:   p.MaterialsCost,
			Labor:       p.LaborCost,
			Overhead:    p.OverheadCost,
			Additional:  orEmpty(p.Additional),
			Total:       p.TotalCost(),
			CostPerUnit: p.CostPerUnit(),
			Currency:    p.Currency,
		},
		QualityChecks: orEmpty(p.QualityChecks),
		Staff:         orEmpty(p.Staff),
		Machine:       p.Machine,
		Issues:        orEmpty(p.Issues),
		Notes:         p.Notes,
		Efficiency:    p.Efficiency(),
	}
}

// CompletionCheckResponse lists what blocks approval.
type CompletionCheckResponse struct {
	CanComplete bool     `json:"canComplete"`
	Issues      []string `json:"issues"`
}

// NewCompletionCheckResponse wraps the issues of a completion check.
func NewCompletionCheckResponse(issues []string) CompletionCheckResponse {
	return CompletionCheckResponse{CanComplete: len(issues) == 0, Issues: orEmpty(issues)}
}

func orEmpty[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/filter"
)

// --- List query ---

// ListQuery is the query string shared by list endpoints.
type ListQuery struct {
	Limit          int      `form:"limit" binding:"omitempty,min=0"`
	Offset         int      `form:"offset" binding:"omitempty,min=0"`
	Search         string   `form:"search" binding:"omitempty,max=100"`
	Brand          string   `form:"brand" binding:"omitempty,uuid"`
	Status         string   `form:"status"`
	OrderBy        string   `form:"orderBy"`
	IncludeDeleted bool     `form:"includeDeleted"`
	Filter         []string `form:"filter"`
}

// ToFilter converts the query into a domain filter. Filters use "field:op:value".
func (q *ListQuery) ToFilter() (domain.ListFilter, error) {
	f := domain.ListFilter{
		Search:         strings.TrimSpace(q.Search),
		Status:         q.Status,
		OrderBy:        q.OrderBy,
		IncludeDeleted: q.IncludeDeleted,
		Limit:          q.Limit,
		Offset:         q.Offset,
	}
	if q.Brand != "" {
		brandID, err := id.ParseField("brand", q.Brand)
		if err != nil {
			return f, err
		}
		f.BrandID = &brandID
	}
	for _, raw := range q.Filter {
		item, err := filter.Parse(raw)
		if err != nil {
			return f, apperror.NewFieldValidation("filter", err.Error())
		}
		f.AdvancedFilters = append(f.AdvancedFilters, item)
	}
	return f, nil
}

// PageQuery is limit/offset only.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=0"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// DateRangeQuery bounds reports. Dates are YYYY-MM-DD or RFC 3339.
type DateRangeQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Brand string `form:"brand" binding:"omitempty,uuid"`
}

// Parse returns the bounds; zero times mean "not given". A date-only To covers
// the whole day.
func (q *DateRangeQuery) Parse() (from, to time.Time, brandID *id.ID, err error) {
	if from, err = parseDate("from", q.From, false); err != nil {
		return
	}
	if to, err = parseDate("to", q.To, true); err != nil {
		return
	}
	if q.Brand != "" {
		var b id.ID
		if b, err = id.ParseField("brand", q.Brand); err != nil {
			return
		}
		brandID = &b
	}
	return
}

func parseDate(field, s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperror.NewFieldValidation(field, "must be a date (YYYY-MM-DD)")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// ParseOptionalID parses an optional reference id.
func ParseOptionalID(field, s string) (*id.ID, error) {
	if s == "" {
		return nil, nil
	}
	v, err := id.ParseField(field, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// --- Responses ---

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy *id.ID    `json:"createdBy,omitempty"`
	UpdatedBy *id.ID    `json:"updatedBy,omitempty"`
}

// FromBase creates BaseResponse from entity.BaseEntity.
func FromBase(b entity.BaseEntity) BaseResponse {
	return BaseResponse{
		ID:        b.ID.String(),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		CreatedBy: b.CreatedBy,
		UpdatedBy: b.UpdatedBy,
	}
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// MapList converts a domain list result with fn.
func MapList[E any, T any](r domain.ListResult[E], fn func(E) T) ListResponse[T] {
	items := make([]T, len(r.Items))
	for i, e := range r.Items {
		items[i] = fn(e)
	}
	return ListResponse[T]{Items: items, TotalCount: r.TotalCount, Limit: r.Limit, Offset: r.Offset}
}

// StatusRequest moves an entity to another status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// QuantityQuery carries the production quantity of formula endpoints.
type QuantityQuery struct {
	Quantity string `form:"quantity" binding:"required"`
}

// SuccessResponse is the envelope of every successful JSON response.
type SuccessResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSuccess wraps data in the success envelope.
func NewSuccess(data any, message string) SuccessResponse {
	return SuccessResponse{Success: true, Data: data, Message: message, Timestamp: time.Now().UTC()}
}

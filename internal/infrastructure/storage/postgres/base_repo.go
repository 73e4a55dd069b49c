package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/filter"
)

// Versioned is what BaseRepo needs from a stored entity.
type Versioned interface {
	domain.Entity
	GetVersion() int
	SetVersion(int)
}

// BaseRepo provides CRUD on one table for entities described by "db" tags.
// Specific repositories embed it and add their own queries.
type BaseRepo[T Versioned] struct {
	txm          *TxManager
	table        string
	entity       string
	cols         []string
	searchCols   []string
	managed      []string
	defaultOrder string
	newFn        func() T
}

// NewBaseRepo creates a repository over table. entityName is used in error messages.
func NewBaseRepo[T Versioned](txm *TxManager, table, entityName string, cols []string, newFn func() T) *BaseRepo[T] {
	r := &BaseRepo[T]{
		txm:    txm,
		table:  table,
		entity: entityName,
		cols:   cols,
		newFn:  newFn,
	}
	for _, c := range []string{"name", "code"} {
		if r.HasColumn(c) {
			r.searchCols = append(r.searchCols, c)
		}
	}
	r.defaultOrder = "created_at DESC"
	if r.HasColumn("name") {
		r.defaultOrder = "name ASC"
	}
	return r
}

// WithSearch replaces the columns matched by ListFilter.Search.
func (r *BaseRepo[T]) WithSearch(cols ...string) *BaseRepo[T] {
	r.searchCols = cols
	return r
}

// WithOrder replaces the ordering used when ListFilter.OrderBy is empty.
func (r *BaseRepo[T]) WithOrder(order string) *BaseRepo[T] {
	r.defaultOrder = order
	return r
}

// WithManaged names columns that Update never writes. They belong to another
// writer, like the stock projections kept by the inventory ledger.
func (r *BaseRepo[T]) WithManaged(cols ...string) *BaseRepo[T] {
	r.managed = append(r.managed, cols...)
	return r
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *BaseRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the active transaction or the pool.
func (r *BaseRepo[T]) Querier(ctx context.Context) Querier {
	return r.txm.GetQuerier(ctx)
}

// Table returns the table name.
func (r *BaseRepo[T]) Table() string { return r.table }

// HasColumn reports whether col is one of the mapped columns.
func (r *BaseRepo[T]) HasColumn(col string) bool {
	return slices.Contains(r.cols, col)
}

// SelectAll starts a SELECT of every mapped column.
func (r *BaseRepo[T]) SelectAll() squirrel.SelectBuilder {
	return r.Builder().Select(r.cols...).From(r.table)
}

// Create inserts e.
func (r *BaseRepo[T]) Create(ctx context.Context, e T) error {
	if len(r.cols) == 0 {
		return fmt.Errorf("%s: no db tags found", r.table)
	}
	sql, args, err := r.InsertQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return MapError(err, r.entity, "insert")
	}
	return nil
}

// Update writes e if the stored version still matches e's, then bumps e's version.
// Managed columns keep their stored values.
func (r *BaseRepo[T]) Update(ctx context.Context, e T) error {
	version := e.GetVersion()
	sql, args, err := r.UpdateQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(err, r.entity, "update")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entity, e.GetID())
	}
	e.SetVersion(version + 1)
	return nil
}

// InsertQuery builds the INSERT of every mapped column of e.
func (r *BaseRepo[T]) InsertQuery(e T) squirrel.InsertBuilder {
	return r.Builder().Insert(r.table).SetMap(r.columnsOf(e))
}

// UpdateQuery builds the versioned UPDATE issued by Update.
func (r *BaseRepo[T]) UpdateQuery(e T) squirrel.UpdateBuilder {
	skip := append([]string{"id", "version", "created_at", "created_by"}, r.managed...)
	version := e.GetVersion()
	return r.Builder().
		Update(r.table).
		SetMap(r.columnsOf(e, skip...)).
		Set("version", version+1).
		Where(squirrel.Eq{"id": e.GetID(), "version": version})
}

// GetByID loads one row, deleted or not.
func (r *BaseRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := r.FindOne(ctx, r.SelectAll().Where(squirrel.Eq{"id": entityID}).Limit(1))
	if apperror.IsNotFound(err) {
		return e, apperror.NewNotFound(r.entity, entityID.String())
	}
	return e, err
}

// GetByCode loads a live row by its code.
func (r *BaseRepo[T]) GetByCode(ctx context.Context, code string) (T, error) {
	e, err := r.FindOne(ctx, r.SelectAll().
		Where(squirrel.Eq{"code": code, "deletion_mark": false}).
		Limit(1))
	if apperror.IsNotFound(err) {
		return e, apperror.NewNotFound(r.entity, code)
	}
	return e, err
}

// GetForUpdate loads a row and locks it until the transaction ends.
func (r *BaseRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	e, err := r.FindOne(ctx, r.SelectAll().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"))
	if apperror.IsNotFound(err) {
		return e, apperror.NewNotFound(r.entity, entityID.String())
	}
	return e, err
}

// FindOne runs q and scans a single row.
func (r *BaseRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	e := r.newFn()
	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.Querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.entity, "")
		}
		return e, fmt.Errorf("get %s: %w", r.entity, err)
	}
	return e, nil
}

// FindMany runs q and scans all rows.
func (r *BaseRepo[T]) FindMany(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.entity, err)
	}
	return items, nil
}

// Exists reports whether a row with the id exists.
func (r *BaseRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select().
		Column(squirrel.Expr("EXISTS (SELECT 1 FROM "+r.table+" WHERE id = ?)", entityID)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.entity, err)
	}
	return exists, nil
}

// SetDeletionMark sets or clears the soft-delete flag.
func (r *BaseRepo[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	sql, args, err := r.Builder().
		Update(r.table).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(err, r.entity, "delete")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, entityID.String())
	}
	return nil
}

// List applies the common filter, counts, orders and pages. scope adds
// repository-specific conditions and may be nil.
func (r *BaseRepo[T]) List(ctx context.Context, f domain.ListFilter, scope func(squirrel.SelectBuilder) squirrel.SelectBuilder) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: f.Limit, Offset: f.Offset}

	q, err := r.ApplyFilter(r.SelectAll(), f)
	if err != nil {
		return result, err
	}
	if scope != nil {
		q = scope(q)
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.Querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.entity, err)
	}

	orderBy, err := r.ParseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	items, err := r.FindMany(ctx, q)
	if err != nil {
		return result, err
	}
	if items == nil {
		items = []T{}
	}
	result.Items = items
	return result, nil
}

// ApplyFilter adds the conditions of f that apply to this table.
func (r *BaseRepo[T]) ApplyFilter(q squirrel.SelectBuilder, f domain.ListFilter) (squirrel.SelectBuilder, error) {
	if !f.IncludeDeleted && r.HasColumn("deletion_mark") {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if f.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + f.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, c := range r.searchCols {
			or = append(or, squirrel.ILike{c: pattern})
		}
		q = q.Where(or)
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}
	if f.BrandID != nil && r.HasColumn("brand_id") {
		q = q.Where(squirrel.Eq{"brand_id": *f.BrandID})
	}
	if f.Status != "" && r.HasColumn("status") {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	return r.applyAdvancedFilters(q, f.AdvancedFilters)
}

func (r *BaseRepo[T]) applyAdvancedFilters(q squirrel.SelectBuilder, items []filter.Item) (squirrel.SelectBuilder, error) {
	for _, item := range items {
		if !r.HasColumn(item.Field) {
			return q, apperror.NewFieldValidation("filter", "unknown filter field "+item.Field)
		}

		switch item.Operator {
		case filter.Equal, filter.InList:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotEqual, filter.NotInList:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{item.Field: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{item.Field: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{item.Field: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{item.Field: item.Value})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{item.Field: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{item.Field: nil})
		case filter.Contains:
			q = q.Where(squirrel.ILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		case filter.NotContains:
			q = q.Where(squirrel.NotILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		}
	}
	return q, nil
}

// ParseOrderBy turns "field" or "-field" into an ORDER BY clause over mapped columns.
func (r *BaseRepo[T]) ParseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return r.defaultOrder, nil
	}

	direction := "ASC"
	field := orderBy
	switch {
	case strings.HasPrefix(orderBy, "-"):
		direction = "DESC"
		field = orderBy[1:]
	case strings.HasPrefix(orderBy, "+"):
		field = orderBy[1:]
	}
	field = strings.TrimSpace(field)

	if field == "" || !r.HasColumn(field) {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	return field + " " + direction, nil
}

// columnsOf maps e to columns, keeping mapped ones and dropping skip.
func (r *BaseRepo[T]) columnsOf(e T, skip ...string) map[string]any {
	all := ToMap(e)
	data := make(map[string]any, len(r.cols))
	for _, c := range r.cols {
		if slices.Contains(skip, c) {
			continue
		}
		if v, ok := all[c]; ok {
			data[c] = v
		}
	}
	return data
}

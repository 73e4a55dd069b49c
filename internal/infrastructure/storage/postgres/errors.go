package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"trackiq/internal/core/apperror"
)

// PostgreSQL error codes mapped to API errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapError translates driver errors into AppErrors. entity names the table or
// domain object for messages; op prefixes unmapped errors.
func MapError(err error, entity, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entity, "")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewDuplicate(entity, constraintField(pgErr), "").WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewConflict(fmt.Sprintf("%s is referenced by other records", entity)).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgCheckViolation:
			return apperror.NewValidation(fmt.Sprintf("%s violates constraint %s", entity, pgErr.ConstraintName)).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}

// constraintField guesses the column from names like "brands_code_key".
func constraintField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	name := strings.TrimSuffix(strings.TrimSuffix(pgErr.ConstraintName, "_key"), "_idx")
	if name == "" {
		return "key"
	}
	if i := strings.LastIndexByte(name, '_'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

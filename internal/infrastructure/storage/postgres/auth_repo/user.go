// Package auth_repo provides the PostgreSQL user repository.
package auth_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"trackiq/internal/core/apperror"
	"trackiq/internal/domain"
	"trackiq/internal/domain/auth"
	"trackiq/internal/infrastructure/storage/postgres"
)

const usersTable = "users"

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	*postgres.BaseRepo[*auth.User]
}

var _ auth.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	base := postgres.NewBaseRepo(txm, usersTable, "user",
		postgres.Columns[auth.User](),
		func() *auth.User { return new(auth.User) })
	base.WithSearch("username", "email", "first_name", "last_name").WithOrder("username ASC")
	return &UserRepo{BaseRepo: base}
}

// GetByEmail finds a live user by email, case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	u, err := r.FindOne(ctx, r.SelectAll().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, err
}

// RecordLogin writes the login bookkeeping columns only.
func (r *UserRepo) RecordLogin(ctx context.Context, user *auth.User) error {
	sql, args, err := r.Builder().
		Update(usersTable).
		SetMap(map[string]any{
			"last_login_at":         user.LastLoginAt,
			"failed_login_attempts": user.FailedLoginAttempts,
			"locked_until":          user.LockedUntil,
		}).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "user", "record login")
	}
	return nil
}

// List returns users matching the filter.
func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) (domain.ListResult[*auth.User], error) {
	return r.BaseRepo.List(ctx, filter.ListFilter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.Role != "" {
			q = q.Where(squirrel.Eq{"role": filter.Role})
		}
		return q
	})
}

// Exists reports whether a live user has the email or the username.
func (r *UserRepo) Exists(ctx context.Context, email, username string) (bool, error) {
	sql, args, err := r.Builder().
		Select().
		Column(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+usersTable+" WHERE deletion_mark = FALSE AND (LOWER(email) = ? OR LOWER(username) = ?))",
			strings.ToLower(strings.TrimSpace(email)), strings.ToLower(strings.TrimSpace(username)),
		)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

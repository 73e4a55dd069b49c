package auth

import (
	"context"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail finds a live user by normalized email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update writes user with an optimistic lock on its version.
	Update(ctx context.Context, user *User) error

	// RecordLogin stores the login bookkeeping fields without a version check.
	RecordLogin(ctx context.Context, user *User) error

	SetDeletionMark(ctx context.Context, userID id.ID, marked bool) error
	List(ctx context.Context, filter UserFilter) (domain.ListResult[*User], error)

	// Exists reports whether a live user already uses the email or username.
	Exists(ctx context.Context, email, username string) (bool, error)
}

// UserFilter for listing users.
type UserFilter struct {
	domain.ListFilter
	Role string
}

// Package context carries request-scoped values between layers.
package context

import (
	"context"
)

// UserContext is the caller decoded from the bearer token.
type UserContext struct {
	UserID      string
	Email       string
	Username    string
	Role        string
	Permissions []string // "module:action"
	IsAdmin     bool
}

// LogFields returns the logger key-value pairs of u.
func (u *UserContext) LogFields() []any {
	if u == nil {
		return nil
	}
	return []any{"user_id", u.UserID, "role", u.Role}
}

type userContextKey struct{}

// WithUser stores the caller in ctx.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// HasRole checks the caller's role. Admin satisfies every role check.
func HasRole(ctx context.Context, roles ...string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	if u.IsAdmin {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Package auth provides users, password login and JWT access tokens.
package auth

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/entity"
	"trackiq/internal/core/security"
)

// Status of a user account.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// User is an account that can log in.
type User struct {
	entity.BaseEntity

	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	FirstName    string `db:"first_name" json:"firstName,omitempty"`
	LastName     string `db:"last_name" json:"lastName,omitempty"`

	Role          security.Role   `db:"role" json:"role"`
	Grants        security.Grants `db:"grants" json:"permissions"`
	PolicyVersion int             `db:"policy_version" json:"policyVersion"`
	Status        Status          `db:"status" json:"status"`

	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLogin,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
}

// NewUser creates an active user holding the role's current default grants.
func NewUser(username, email, passwordHash string, role security.Role) *User {
	return &User{
		BaseEntity:    entity.NewBaseEntity(),
		Username:      strings.TrimSpace(username),
		Email:         NormalizeEmail(email),
		PasswordHash:  passwordHash,
		Role:          role,
		Grants:        security.DefaultGrants(role),
		PolicyVersion: security.PolicyVersion,
		Status:        StatusActive,
	}
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	var v entity.Violations
	if n := len(u.Username); n < 3 || n > 30 {
		v.Add("username", "must be between 3 and 30 characters")
	} else if !usernamePattern.MatchString(u.Username) {
		v.Add("username", "may contain letters, digits, dot, dash and underscore")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil || u.Email == "" {
		v.Add("email", "must be a valid email address")
	}
	if !u.Role.Valid() {
		v.Add("role", "must be one of admin, manager, supervisor, operator, viewer")
	}
	for i, g := range u.Grants {
		field := fmt.Sprintf("permissions[%d]", i)
		if !slices.Contains(security.Modules, g.Module) {
			v.Add(field+".module", "unknown module "+string(g.Module))
		}
		for _, a := range g.Actions {
			if !slices.Contains(security.Actions, a) {
				v.Add(field+".actions", "unknown action "+string(a))
			}
		}
	}
	v.OneOf("status", string(u.Status), string(StatusActive), string(StatusInactive), string(StatusSuspended))
	v.MaxLen("firstName", u.FirstName, 50)
	v.MaxLen("lastName", u.LastName, 50)
	return v.Err()
}

// IsLocked reports whether repeated failures locked the account.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanLogin rejects inactive, suspended and locked accounts.
func (u *User) CanLogin(now time.Time) error {
	switch u.Status {
	case StatusInactive:
		return apperror.NewUnauthorized("Account is inactive")
	case StatusSuspended:
		return apperror.NewUnauthorized("Account is suspended")
	}
	if u.IsLocked(now) {
		return apperror.NewUnauthorized("Account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin counts a failure and locks the account at maxAttempts.
func (u *User) RecordFailedLogin(now time.Time, maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts {
		until := now.Add(lockDuration)
		u.LockedUntil = &until
	}
}

// RecordSuccessfulLogin clears failures and stamps the login time.
func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
}

// HasPermission applies the access rule to this user.
func (u *User) HasPermission(module security.Module, action security.Action) bool {
	return security.HasPermission(u.Role, u.Grants, module, action)
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == security.RoleAdmin
}

// FullName returns the display name.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// PolicyOutdated reports whether the grants were copied from an older table.
func (u *User) PolicyOutdated() bool {
	return u.PolicyVersion < security.PolicyVersion
}

// ResyncGrants replaces the grants with the role's current defaults.
func (u *User) ResyncGrants() {
	u.Grants = security.DefaultGrants(u.Role)
	u.PolicyVersion = security.PolicyVersion
}

// CheckPasswordStrength requires at least 8 characters with upper and lower
// case letters, a digit and a special character.
func CheckPasswordStrength(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if len(password) < 8 || !upper || !lower || !digit || !special {
		return apperror.NewFieldValidation("password",
			"must be at least 8 characters and contain upper and lower case letters, a digit and a special character")
	}
	return nil
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

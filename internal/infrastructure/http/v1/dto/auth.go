package dto

import (
	"time"

	"trackiq/internal/core/security"
	"trackiq/internal/domain/auth"
)

// --- Request DTOs ---

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Email: r.Email, Password: r.Password}
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,strong_password"`
}

// CreateUserRequest registers a user. Permissions default to the role's grants.
type CreateUserRequest struct {
	Username    string          `json:"username" binding:"required,min=3,max=30"`
	Email       string          `json:"email" binding:"required,email"`
	Password    string          `json:"password" binding:"required,strong_password"`
	FirstName   string          `json:"firstName" binding:"omitempty,max=50"`
	LastName    string          `json:"lastName" binding:"omitempty,max=50"`
	Role        string          `json:"role" binding:"omitempty,oneof=admin manager supervisor operator viewer"`
	Permissions security.Grants `json:"permissions"`
}

// ToInput converts to the domain input.
func (r *CreateUserRequest) ToInput() auth.NewUserInput {
	return auth.NewUserInput{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      security.Role(r.Role),
		Grants:    r.Permissions,
	}
}

// UpdateUserRequest edits a user; omitted fields are unchanged.
type UpdateUserRequest struct {
	Version     int             `json:"version" binding:"omitempty,min=1"`
	Email       *string         `json:"email" binding:"omitempty,email"`
	FirstName   *string         `json:"firstName" binding:"omitempty,max=50"`
	LastName    *string         `json:"lastName" binding:"omitempty,max=50"`
	Role        *string         `json:"role" binding:"omitempty,oneof=admin manager supervisor operator viewer"`
	Permissions security.Grants `json:"permissions"`
	Status      *string         `json:"status" binding:"omitempty,oneof=active inactive suspended"`
}

// ToPatch converts to the domain patch.
func (r *UpdateUserRequest) ToPatch() auth.UserPatch {
	p := auth.UserPatch{
		Version:   r.Version,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Grants:    r.Permissions,
	}
	if r.Role != nil {
		role := security.Role(*r.Role)
		p.Role = &role
	}
	if r.Status != nil {
		status := auth.Status(*r.Status)
		p.Status = &status
	}
	return p
}

// UserListQuery adds the role filter to the common list query.
type UserListQuery struct {
	ListQuery
	Role string `form:"role" binding:"omitempty,oneof=admin manager supervisor operator viewer"`
}

// ToUserFilter converts the query into a user filter.
func (q *UserListQuery) ToUserFilter() (auth.UserFilter, error) {
	base, err := q.ToFilter()
	if err != nil {
		return auth.UserFilter{}, err
	}
	return auth.UserFilter{ListFilter: base, Role: q.Role}, nil
}

// --- Response DTOs ---

// UserResponse represents user in API response.
type UserResponse struct {
	BaseResponse
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	FirstName      string          `json:"firstName,omitempty"`
	LastName       string          `json:"lastName,omitempty"`
	FullName       string          `json:"fullName"`
	Role           security.Role   `json:"role"`
	Permissions    security.Grants `json:"permissions"`
	PolicyVersion  int             `json:"policyVersion"`
	PolicyOutdated bool            `json:"policyOutdated"`
	Status         auth.Status     `json:"status"`
	LastLogin      *time.Time      `json:"lastLogin,omitempty"`
}

// FromUser creates response from domain user.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		BaseResponse:   FromBase(u.BaseEntity),
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName(),
		Role:           u.Role,
		Permissions:    orEmpty(u.Grants),
		PolicyVersion:  u.PolicyVersion,
		PolicyOutdated: u.PolicyOutdated(),
		Status:         u.Status,
		LastLogin:      u.LastLoginAt,
	}
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// FromSession creates response from a domain session.
func FromSession(s *auth.Session) LoginResponse {
	return LoginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: FromUser(s.User)}
}

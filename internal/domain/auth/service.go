package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"trackiq/internal/core/apperror"
	appctx "trackiq/internal/core/context"
	"trackiq/internal/core/id"
	"trackiq/internal/core/security"
	"trackiq/internal/core/tx"
	"trackiq/internal/domain"
	"trackiq/internal/domain/audit"
	"trackiq/pkg/logger"
)

const entityName = "User"

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
	BcryptCost       int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
		BcryptCost:       bcrypt.DefaultCost,
	}
}

// Service provides authentication and user management.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	audit      audit.Recorder
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, txManager tx.Manager, jwtService *JWTService, rec audit.Recorder, config ServiceConfig) *Service {
	if txManager == nil {
		txManager = tx.Nop{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		audit:      rec,
		config:     config,
		now:        time.Now,
	}
}

// Login checks credentials and issues an access token. Unknown email and wrong
// password give the same 401.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, apperror.NewValidation("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("Invalid credentials")
		}
		return nil, err
	}

	now := s.now()
	if err := user.CanLogin(now); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.RecordLogin(ctx, user); err != nil {
			logger.Warn(ctx, "failed to record login failure", "user_id", user.ID.String(), "error", err)
		}
		return nil, apperror.NewUnauthorized("Invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	user.RecordSuccessfulLogin(now)
	if err := s.userRepo.RecordLogin(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID.String(), "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID.String(),
		"role", string(user.Role))

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateToken resolves a bearer token to the caller.
func (s *Service) ValidateToken(token string) (*appctx.UserContext, error) {
	return s.jwtService.ValidateToken(token)
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	uid, ok := domain.CurrentUserID(ctx)
	if !ok {
		return nil, apperror.NewUnauthorized("Not authenticated")
	}
	u, err := s.GetUser(ctx, uid)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewUnauthorized("User no longer exists")
	}
	return u, err
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	u, err := s.Me(ctx)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return apperror.NewFieldValidation("currentPassword", "is incorrect")
	}
	if current == next {
		return apperror.NewFieldValidation("newPassword", "must differ from the current password")
	}
	if err := CheckPasswordStrength(next); err != nil {
		return err
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	u.SetUpdatedBy(u.ID)
	if err := s.userRepo.Update(ctx, u); err != nil {
		return err
	}
	logger.Info(ctx, "password changed", "user_id", u.ID.String())
	return nil
}

// NewUserInput carries the fields of a user being created.
type NewUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      security.Role
	// Grants overrides the role defaults when non-nil
	Grants security.Grants
}

// CreateUser registers a user with a copy of the role's default grants.
func (s *Service) CreateUser(ctx context.Context, in NewUserInput) (*User, error) {
	if in.Role == "" {
		in.Role = security.RoleViewer
	}
	if err := CheckPasswordStrength(in.Password); err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := NewUser(in.Username, in.Email, hash, in.Role)
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	if in.Grants != nil {
		u.Grants = in.Grants.Clone()
	}
	if uid, ok := domain.CurrentUserID(ctx); ok {
		u.SetCreatedBy(uid)
	}
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.Exists(ctx, u.Email, u.Username)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if exists {
			return apperror.NewConflict("Email or username already registered").WithDetail("email", u.Email)
		}
		return s.userRepo.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user created", "user_id", u.ID.String(), "role", string(u.Role))
	audit.Safe(ctx, s.audit, entityName, u.ID, audit.ActionCreate, u)
	return u, nil
}

// GetUser loads a live user.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, userID.String())
		}
		return nil, err
	}
	if u.IsDeleted() {
		return nil, apperror.NewNotFound(entityName, userID.String())
	}
	return u, nil
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) (domain.ListResult[*User], error) {
	filter.Normalize(domain.DefaultPageSize, domain.MaxPageSize)
	return s.userRepo.List(ctx, filter)
}

// UserPatch carries editable user fields; nil means unchanged.
type UserPatch struct {
	Version   int
	Email     *string
	FirstName *string
	LastName  *string
	Role      *security.Role
	Grants    security.Grants
	Status    *Status
}

// UpdateUser applies a patch. Changing the role without explicit grants
// resets the grants to the new role's defaults.
func (s *Service) UpdateUser(ctx context.Context, userID id.ID, patch UserPatch) (*User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Version > 0 && patch.Version != u.Version {
		return nil, apperror.NewConcurrentModification(entityName, userID.String())
	}
	if patch.Email != nil {
		u.Email = NormalizeEmail(*patch.Email)
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Role != nil && *patch.Role != u.Role {
		u.Role = *patch.Role
		if patch.Grants == nil {
			u.ResyncGrants()
		}
	}
	if patch.Grants != nil {
		u.Grants = patch.Grants.Clone()
	}
	if patch.Status != nil {
		u.Status = *patch.Status
	}
	if self, ok := domain.CurrentUserID(ctx); ok && self == u.ID && u.Status != StatusActive {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "You cannot deactivate your own account")
	}

	u.Touch()
	if uid, ok := domain.CurrentUserID(ctx); ok {
		u.SetUpdatedBy(uid)
	}
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		if apperror.HasCode(err, apperror.CodeDuplicate) {
			return nil, apperror.NewConflict("Email already registered").WithDetail("email", u.Email)
		}
		return nil, err
	}
	audit.Safe(ctx, s.audit, entityName, u.ID, audit.ActionUpdate, u)
	return u, nil
}

// DeleteUser soft-deletes a user. Users cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, userID id.ID) error {
	if self, ok := domain.CurrentUserID(ctx); ok && self == userID {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "You cannot delete your own account")
	}
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetDeletionMark(ctx, userID, true); err != nil {
		return err
	}
	audit.Safe(ctx, s.audit, entityName, userID, audit.ActionDelete, u)
	return nil
}

// ResyncPermissions copies the role's current default grants onto the user.
func (s *Service) ResyncPermissions(ctx context.Context, userID id.ID) (*User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.ResyncGrants()
	u.Touch()
	if uid, ok := domain.CurrentUserID(ctx); ok {
		u.SetUpdatedBy(uid)
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	logger.Info(ctx, "permissions resynced",
		"user_id", u.ID.String(),
		"policy_version", u.PolicyVersion)
	audit.Safe(ctx, s.audit, entityName, u.ID, audit.ActionUpdate, u)
	return u, nil
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.NewFieldValidation("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

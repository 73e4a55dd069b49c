package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trackiq/internal/core/apperror"
	appctx "trackiq/internal/core/context"
	"trackiq/internal/core/id"
	"trackiq/internal/core/security"
	"trackiq/internal/domain"
)

type memUsers struct {
	mu    sync.Mutex
	users map[id.ID]User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[id.ID]User)}
}

func (r *memUsers) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound(entityName, userID.String())
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && !u.IsDeleted() {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound(entityName, email)
}

func (r *memUsers) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return apperror.NewNotFound(entityName, u.ID.String())
	}
	if stored.Version != u.Version {
		return apperror.NewConcurrentModification(entityName, u.ID.String())
	}
	u.Version++
	r.users[u.ID] = *u
	return nil
}

func (r *memUsers) RecordLogin(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.users[u.ID]
	stored.FailedLoginAttempts = u.FailedLoginAttempts
	stored.LockedUntil = u.LockedUntil
	stored.LastLoginAt = u.LastLoginAt
	r.users[u.ID] = stored
	return nil
}

func (r *memUsers) SetDeletionMark(_ context.Context, userID id.ID, marked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[userID]
	u.DeletionMark = marked
	r.users[userID] = u
	return nil
}

func (r *memUsers) List(_ context.Context, f UserFilter) (domain.ListResult[*User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*User
	for _, u := range r.users {
		if f.Role != "" && string(u.Role) != f.Role {
			continue
		}
		out = append(out, &u)
	}
	return domain.ListResult[*User]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *memUsers) Exists(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.IsDeleted() && (u.Email == email || strings.EqualFold(u.Username, username)) {
			return true, nil
		}
	}
	return false, nil
}

const adminPassword = "Admin@123"

func newTestService(t *testing.T) (*Service, *User) {
	t.Helper()
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxLoginAttempts = 3
	svc := NewService(newMemUsers(), nil, NewJWTService(DefaultJWTConfig("test-secret")), nil, cfg)

	admin, err := svc.CreateUser(context.Background(), NewUserInput{
		Username: "admin",
		Email:    "admin@trackiq.com",
		Password: adminPassword,
		Role:     security.RoleAdmin,
	})
	require.NoError(t, err)
	return svc, admin
}

func as(u *User) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: u.ID.String(),
		Role:   string(u.Role),
	})
}

func TestLogin(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, Credentials{Email: "Admin@TrackIQ.com", Password: adminPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, admin.ID, session.User.ID)

	uc, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.True(t, uc.IsAdmin)

	_, err = svc.Login(ctx, Credentials{Email: "admin@trackiq.com", Password: "wrong"})
	assert.Equal(t, 401, apperror.GetHTTPStatus(err))

	_, err = svc.Login(ctx, Credentials{Email: "nobody@trackiq.com", Password: adminPassword})
	assert.Equal(t, 401, apperror.GetHTTPStatus(err))
}

func TestLogin_LocksAfterFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, Credentials{Email: "admin@trackiq.com", Password: "wrong"})
		require.Error(t, err)
	}
	_, err := svc.Login(ctx, Credentials{Email: "admin@trackiq.com", Password: adminPassword})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")

	now = now.Add(16 * time.Minute)
	_, err = svc.Login(ctx, Credentials{Email: "admin@trackiq.com", Password: adminPassword})
	assert.NoError(t, err)
}

func TestLogin_InactiveOrSuspended(t *testing.T) {
	svc, admin := newTestService(t)

	for _, st := range []Status{StatusInactive, StatusSuspended} {
		u, err := svc.CreateUser(as(admin), NewUserInput{
			Username: "op-" + string(st),
			Email:    string(st) + "@trackiq.com",
			Password: "Operat0r!",
			Role:     security.RoleOperator,
		})
		require.NoError(t, err)
		_, err = svc.UpdateUser(as(admin), u.ID, UserPatch{Status: &st})
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), Credentials{Email: u.Email, Password: "Operat0r!"})
		assert.Equal(t, 401, apperror.GetHTTPStatus(err), st)
	}
}

func TestCreateUser_Rules(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := as(admin)

	_, err := svc.CreateUser(ctx, NewUserInput{Username: "weak", Email: "weak@trackiq.com", Password: "password"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.CreateUser(ctx, NewUserInput{Username: "ab", Email: "ab@trackiq.com", Password: "Str0ng!pw"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.CreateUser(ctx, NewUserInput{Username: "other", Email: "admin@trackiq.com", Password: "Str0ng!pw"})
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	viewer, err := svc.CreateUser(ctx, NewUserInput{Username: "viewer1", Email: "viewer@trackiq.com", Password: "Str0ng!pw"})
	require.NoError(t, err)
	assert.Equal(t, security.RoleViewer, viewer.Role)
	assert.False(t, viewer.HasPermission(security.ModuleUsers, security.ActionDelete))
	assert.True(t, viewer.HasPermission(security.ModuleReports, security.ActionView))
	assert.Equal(t, security.PolicyVersion, viewer.PolicyVersion)
}

func TestChangePassword(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := as(admin)

	err := svc.ChangePassword(ctx, "nope", "N3w!password")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	require.NoError(t, svc.ChangePassword(ctx, adminPassword, "N3w!password"))

	_, err = svc.Login(context.Background(), Credentials{Email: "admin@trackiq.com", Password: adminPassword})
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), Credentials{Email: "admin@trackiq.com", Password: "N3w!password"})
	assert.NoError(t, err)
}

func TestUpdateUser_RoleChangeResetsGrants(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := as(admin)

	u, err := svc.CreateUser(ctx, NewUserInput{Username: "op1", Email: "op1@trackiq.com", Password: "Str0ng!pw", Role: security.RoleOperator})
	require.NoError(t, err)

	role := security.RoleManager
	u, err = svc.UpdateUser(ctx, u.ID, UserPatch{Role: &role})
	require.NoError(t, err)
	assert.True(t, u.HasPermission(security.ModuleBOM, security.ActionApprove))

	_, err = svc.UpdateUser(ctx, u.ID, UserPatch{Version: 1})
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestResyncPermissions(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := as(admin)

	u, err := svc.CreateUser(ctx, NewUserInput{
		Username: "sup1",
		Email:    "sup1@trackiq.com",
		Password: "Str0ng!pw",
		Role:     security.RoleSupervisor,
		Grants:   security.Grants{{Module: security.ModuleReports, Actions: []security.Action{security.ActionView}}},
	})
	require.NoError(t, err)
	assert.False(t, u.HasPermission(security.ModuleProduction, security.ActionCreate))

	u, err = svc.ResyncPermissions(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, u.HasPermission(security.ModuleProduction, security.ActionCreate))
}

func TestDeleteUser(t *testing.T) {
	svc, admin := newTestService(t)
	ctx := as(admin)

	assert.Error(t, svc.DeleteUser(ctx, admin.ID))

	u, err := svc.CreateUser(ctx, NewUserInput{Username: "temp", Email: "temp@trackiq.com", Password: "Str0ng!pw"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	_, err = svc.GetUser(ctx, u.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMe(t *testing.T) {
	svc, admin := newTestService(t)

	me, err := svc.Me(as(admin))
	require.NoError(t, err)
	assert.Equal(t, "admin", me.Username)

	_, err = svc.Me(context.Background())
	assert.Equal(t, 401, apperror.GetHTTPStatus(err))
}

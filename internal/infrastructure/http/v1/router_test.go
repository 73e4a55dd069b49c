package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trackiq/internal/config"
	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/security"
	"trackiq/internal/domain"
	"trackiq/internal/domain/auth"
	"trackiq/internal/domain/bom"
	"trackiq/internal/domain/catalogs/brand"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/domaintest"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
	"trackiq/internal/domain/reports"
	"trackiq/internal/infrastructure/http/v1/middleware"
	"trackiq/internal/infrastructure/storage/postgres"
	"trackiq/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type brandRepo struct {
	*domaintest.CatalogRepo[brand.Brand, *brand.Brand]
}

func (brandRepo) CountDependents(context.Context, id.ID) (brand.Dependents, error) {
	return brand.Dependents{}, nil
}

// users keeps accounts by email.
type users map[string]*auth.User

func (u users) Create(_ context.Context, user *auth.User) error {
	u[user.Email] = user
	return nil
}

func (u users) GetByID(_ context.Context, userID id.ID) (*auth.User, error) {
	for _, user := range u {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, apperror.NewNotFound("User", userID.String())
}

func (u users) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	if user, ok := u[email]; ok {
		return user, nil
	}
	return nil, apperror.NewNotFound("User", email)
}

func (u users) Update(ctx context.Context, user *auth.User) error { return u.Create(ctx, user) }
func (u users) RecordLogin(context.Context, *auth.User) error      { return nil }
func (u users) SetDeletionMark(context.Context, id.ID, bool) error { return nil }

func (u users) List(context.Context, auth.UserFilter) (domain.ListResult[*auth.User], error) {
	return domain.ListResult[*auth.User]{}, nil
}

func (u users) Exists(_ context.Context, email, _ string) (bool, error) {
	_, ok := u[email]
	return ok, nil
}

type okDB struct{}

func (okDB) Healthy(context.Context) error { return nil }
func (okDB) Stats() postgres.PoolStats     { return postgres.PoolStats{} }

type fixture struct {
	router http.Handler
	jwt    *auth.JWTService
	users  users
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := &config.Config{
		Env:         "test",
		CORSOrigins: []string{"http://localhost:3000"},
		PageDefault: 10,
		PageMax:     100,
	}
	jwt := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	accounts := users{}
	authCfg := auth.DefaultServiceConfig()
	authCfg.BcryptCost = bcrypt.MinCost

	brands := brand.NewService(brandRepo{domaintest.NewCatalogRepo[brand.Brand, *brand.Brand]()}, nil)
	services := Services{
		Auth:         auth.NewService(accounts, nil, jwt, nil, authCfg),
		Brands:       brands,
		RawMaterials: rawmaterial.NewService(nil, nil, brands),
		Products:     product.NewService(nil, nil, brands),
		BOMs:         bom.NewService(nil, nil, nil, nil, nil),
		Productions:  production.NewService(production.ServiceConfig{}),
		Inventory:    inventory.NewService(nil, nil, nil, nil, nil),
		Reports:      reports.NewService(nil),
	}

	r := NewRouter(RouterConfig{
		Config:   cfg,
		Logger:   logger.Nop(),
		Database: okDB{},
		Services: services,
	})
	return fixture{router: r, jwt: jwt, users: accounts}
}

func (f fixture) token(t *testing.T, role security.Role) string {
	t.Helper()
	u := auth.NewUser("tester", "tester@trackiq.com", "", role)
	token, _, err := f.jwt.GenerateAccessToken(u)
	require.NoError(t, err)
	return token
}

func (f fixture) do(method, path, token string) *httptest.ResponseRecorder {
	return f.doJSON(method, path, token, "")
}

func (f fixture) doJSON(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (f fixture) account(t *testing.T, email, password string, role security.Role) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := auth.NewUser("operator", email, string(hash), role)
	f.users[u.Email] = u
	return u
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_NoRoute(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/v1/nothing-here", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, apperror.CodeNotFound, body["code"])
}

func TestRouter_Access(t *testing.T) {
	f := newFixture(t)
	admin := f.token(t, security.RoleAdmin)
	viewer := f.token(t, security.RoleViewer)

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		status  int
		message string
	}{
		{"no token", http.MethodGet, "/api/v1/brands", "", http.StatusUnauthorized, middleware.MsgNotAuthorized},
		{"garbage token", http.MethodGet, "/api/v1/brands", "garbage", http.StatusUnauthorized, middleware.MsgNotAuthorized},
		{"viewer reads brands", http.MethodGet, "/api/v1/brands", viewer, http.StatusOK, ""},
		{"admin reads brands", http.MethodGet, "/api/v1/brands", admin, http.StatusOK, ""},
		{"viewer creates brand", http.MethodPost, "/api/v1/brands", viewer, http.StatusForbidden, middleware.MsgRoleNotAllowed},
		{"viewer lists users", http.MethodGet, "/api/v1/users", viewer, http.StatusForbidden, middleware.MsgRoleNotAllowed},
		{"viewer appends transaction", http.MethodPost, "/api/v1/inventory/transactions", viewer, http.StatusForbidden, middleware.MsgRoleNotAllowed},
		{"viewer changes bom status", http.MethodPost, "/api/v1/boms/" + id.New().String() + "/status", viewer, http.StatusForbidden, middleware.MsgRoleNotAllowed},
		{"me without token", http.MethodGet, "/api/v1/auth/me", "", http.StatusUnauthorized, middleware.MsgNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.method, tt.path, tt.token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, decode(t, w)["message"])
			}
		})
	}
}

func TestRouter_ProductionApproval(t *testing.T) {
	f := newFixture(t)
	supervisor := f.token(t, security.RoleSupervisor)
	operator := f.token(t, security.RoleOperator)
	path := "/api/v1/productions/" + id.New().String() + "/status"

	for _, status := range []string{"approved", "rejected"} {
		t.Run("supervisor "+status, func(t *testing.T) {
			w := f.doJSON(http.MethodPost, path, supervisor, `{"status":"`+status+`"}`)
			require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, middleware.MsgRoleNotAllowed, body["message"])
			assert.Equal(t, "production:approve", body["details"].(map[string]any)["required_permission"])
		})
	}

	t.Run("operator lacks edit", func(t *testing.T) {
		w := f.doJSON(http.MethodPost, path, operator, `{"status":"in-progress"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "production:edit", decode(t, w)["details"].(map[string]any)["required_permission"])
	})
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/brands", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_Login(t *testing.T) {
	f := newFixture(t)
	u := f.account(t, "op@trackiq.com", "s3cret-pass", security.RoleOperator)

	w := f.doJSON(http.MethodPost, "/api/v1/auth/login", "", `{"email":"Op@Trackiq.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeUnauthorized, decode(t, w)["code"])

	w = f.doJSON(http.MethodPost, "/api/v1/auth/login", "", `{"email":"Op@Trackiq.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, data["expiresAt"])

	w = f.do(http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/v1/auth/me", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, u.ID.String(), me["id"])
	assert.Equal(t, "op@trackiq.com", me["email"])
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/brand"
	"trackiq/internal/domain/domaintest"
	"trackiq/internal/infrastructure/http/v1/dto"
	"trackiq/internal/infrastructure/http/v1/middleware"
	"trackiq/internal/infrastructure/http/v1/validation"
	"trackiq/internal/infrastructure/storage/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Setup()
}

type brandRepo struct {
	*domaintest.CatalogRepo[brand.Brand, *brand.Brand]
	deps brand.Dependents
}

func (r *brandRepo) CountDependents(context.Context, id.ID) (brand.Dependents, error) {
	return r.deps, nil
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Details struct {
		Errors []apperror.FieldError `json:"errors"`
	} `json:"details"`
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Trace(), middleware.ErrorHandler(false), middleware.Recovery())
	return r
}

func newBrandEngine(t *testing.T) (*gin.Engine, *brandRepo) {
	t.Helper()
	repo := &brandRepo{CatalogRepo: domaintest.NewCatalogRepo[brand.Brand, *brand.Brand]()}
	svc := brand.NewService(repo, nil)

	h := NewCatalogHandler(NewBaseHandler(), CatalogHandlerConfig[*brand.Brand, dto.CreateBrandRequest, dto.UpdateBrandRequest]{
		Service:      svc.CatalogService,
		EntityName:   "Brand",
		MapCreateDTO: func(req *dto.CreateBrandRequest) (*brand.Brand, error) { return req.ToEntity(), nil },
		MapUpdateDTO: func(req *dto.UpdateBrandRequest, b *brand.Brand) error { req.ApplyTo(b); return nil },
		MapToDTO:     func(b *brand.Brand) any { return dto.FromBrand(b) },
	})

	r := newEngine()
	g := r.Group("/brands")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r, repo
}

func call(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func createBrand(t *testing.T, r http.Handler) dto.BrandResponse {
	t.Helper()
	w, resp := call(t, r, http.MethodPost, "/brands", gin.H{
		"name": "EcoFresh Foods",
		"code": "eco-001",
		"contactPerson": gin.H{
			"name":  "Jane",
			"email": "jane@ecofresh.com",
			"phone": "(650) 253-0000",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, resp.Success)
	assert.Equal(t, "Brand created successfully", resp.Message)

	var b dto.BrandResponse
	require.NoError(t, json.Unmarshal(resp.Data, &b))
	return b
}

func TestCatalogHandler_Create(t *testing.T) {
	r, _ := newBrandEngine(t)

	b := createBrand(t, r)
	assert.Equal(t, "ECO-001", b.Code)
	assert.Equal(t, "+16502530000", b.ContactPerson.Phone)
	assert.True(t, b.IsActive)
	assert.Equal(t, 1, b.Version)
}

func TestCatalogHandler_Create_ValidationErrors(t *testing.T) {
	r, _ := newBrandEngine(t)

	w, resp := call(t, r, http.MethodPost, "/brands", gin.H{"name": "Bad", "code": "BAD CODE!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, apperror.CodeValidation, resp.Code)
	require.NotEmpty(t, resp.Details.Errors)
	assert.Equal(t, "code", resp.Details.Errors[0].Field)
}

func TestCatalogHandler_Create_Duplicate(t *testing.T) {
	r, _ := newBrandEngine(t)
	createBrand(t, r)

	w, resp := call(t, r, http.MethodPost, "/brands", gin.H{"name": "Other", "code": "ECO-001"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeDuplicate, resp.Code)
}

func TestCatalogHandler_Get(t *testing.T) {
	r, _ := newBrandEngine(t)
	b := createBrand(t, r)

	w, resp := call(t, r, http.MethodGet, "/brands/"+b.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.BrandResponse
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, b.ID, got.ID)

	w, resp = call(t, r, http.MethodGet, "/brands/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, resp.Code)

	w, resp = call(t, r, http.MethodGet, "/brands/"+id.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, resp.Code)
}

func TestCatalogHandler_Update_StaleVersion(t *testing.T) {
	r, _ := newBrandEngine(t)
	b := createBrand(t, r)

	body := gin.H{"name": "EcoFresh", "code": "ECO-001", "version": 1}
	w, resp := call(t, r, http.MethodPut, "/brands/"+b.ID, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.BrandResponse
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "EcoFresh", updated.Name)
	assert.Equal(t, 2, updated.Version)

	w, resp = call(t, r, http.MethodPut, "/brands/"+b.ID, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeConcurrentModification, resp.Code)
}

func TestCatalogHandler_Delete_BlockedByDependents(t *testing.T) {
	r, repo := newBrandEngine(t)
	b := createBrand(t, r)

	repo.deps = brand.Dependents{RawMaterials: 1}
	w, resp := call(t, r, http.MethodDelete, "/brands/"+b.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeConflict, resp.Code)

	repo.deps = brand.Dependents{}
	w, _ = call(t, r, http.MethodDelete, "/brands/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCatalogHandler_List(t *testing.T) {
	r, _ := newBrandEngine(t)
	createBrand(t, r)

	w, resp := call(t, r, http.MethodGet, "/brands?limit=500", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list dto.ListResponse[dto.BrandResponse]
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list.Items, 1)
	assert.EqualValues(t, 1, list.TotalCount)
	assert.Equal(t, 100, list.Limit)

	w, resp = call(t, r, http.MethodGet, "/brands?filter=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, resp.Details.Errors)
	assert.Equal(t, "filter", resp.Details.Errors[0].Field)
}

func TestBaseHandler_ParseQuantity(t *testing.T) {
	h := NewBaseHandler()
	r := newEngine()
	r.GET("/q", func(c *gin.Context) {
		q, ok := h.ParseQuantity(c, "quantity")
		if !ok {
			return
		}
		h.OK(c, q)
	})

	tests := []struct {
		query  string
		status int
	}{
		{"?quantity=250", http.StatusOK},
		{"?quantity=0.5", http.StatusOK},
		{"", http.StatusBadRequest},
		{"?quantity=0", http.StatusBadRequest},
		{"?quantity=-3", http.StatusBadRequest},
		{"?quantity=abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, _ := call(t, r, http.MethodGet, "/q"+tt.query, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Healthy(context.Context) error { return s.err }
func (s stubPinger) Stats() postgres.PoolStats     { return postgres.PoolStats{MaxConns: 20} }

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	up := NewHealthHandler(stubPinger{}, "test")
	down := NewHealthHandler(stubPinger{err: errors.New("connection refused")}, "test")
	r.GET("/health", up.Live)
	r.GET("/ready", up.Ready)
	r.GET("/down", down.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "API is running", body["message"])
	assert.Equal(t, "test", body["environment"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type stubAudit struct {
	entityType string
	limit      int
}

func (s *stubAudit) History(_ context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error) {
	s.entityType, s.limit = entityType, limit
	return []postgres.AuditEntry{{ID: id.New(), EntityType: entityType, EntityID: entityID}}, nil
}

func TestAuditHandler_History(t *testing.T) {
	store := &stubAudit{}
	h := NewAuditHandler(NewBaseHandler(), store, map[string]string{"brands": "Brand"})
	r := newEngine()
	r.GET("/audit/:entity/:id", h.History)

	w, resp := call(t, r, http.MethodGet, "/audit/brands/"+id.New().String()+"?limit=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Brand", store.entityType)
	assert.Equal(t, 200, store.limit)
	var entries []postgres.AuditEntry
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	assert.Len(t, entries, 1)

	w, _ = call(t, r, http.MethodGet, "/audit/unknown/"+id.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

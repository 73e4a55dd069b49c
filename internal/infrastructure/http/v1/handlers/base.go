package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/infrastructure/export"
	"trackiq/internal/infrastructure/http/v1/dto"
	"trackiq/internal/infrastructure/http/v1/validation"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	pageDefault int
	pageMax     int
}

// NewBaseHandler creates a base handler with the default page bounds.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{pageDefault: domain.DefaultPageSize, pageMax: domain.MaxPageSize}
}

// WithPaging overrides the page bounds. The services still cap a page at
// domain.MaxPageSize.
func (h *BaseHandler) WithPaging(def, max int) *BaseHandler {
	h.pageDefault, h.pageMax = def, max
	return h
}

// Paginate applies the configured page bounds to f.
func (h *BaseHandler) Paginate(f *domain.ListFilter) {
	f.Normalize(h.pageDefault, h.pageMax)
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, validation.Translate(err))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, validation.Translate(err))
		return false
	}
	return true
}

// Error registers err on the gin context and aborts the request.
// middleware.ErrorHandler renders the response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParamID parses the path parameter name as an id.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.ParseField(name, c.Param(name))
	if err != nil {
		h.Error(c, err)
		return id.Nil(), false
	}
	return v, true
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseQuantity reads a positive decimal query parameter.
func (h *BaseHandler) ParseQuantity(c *gin.Context, key string) (decimal.Decimal, bool) {
	raw := c.Query(key)
	if raw == "" {
		h.Error(c, apperror.NewFieldValidation(key, "is required"))
		return decimal.Zero, false
	}
	q, err := decimal.NewFromString(raw)
	if err != nil || !q.IsPositive() {
		h.Error(c, apperror.NewFieldValidation(key, "must be a positive number"))
		return decimal.Zero, false
	}
	return q, true
}

// OK sends 200 with data in the success envelope.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccess(data, ""))
}

// Created sends 201 with data in the success envelope.
func (h *BaseHandler) Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, dto.NewSuccess(data, message))
}

// Success sends 200 with a message only.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewSuccess(nil, message))
}

// sendWorkbook renders the workbook fully before writing so a failure still
// produces a JSON error.
func (h *BaseHandler) sendWorkbook(c *gin.Context, filename string, sheets ...export.Sheet) {
	var buf bytes.Buffer
	if err := export.Write(&buf, sheets...); err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

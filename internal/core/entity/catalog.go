package entity

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"trackiq/internal/core/apperror"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Catalog is the base type for reference data (brands, materials, products).
type Catalog struct {
	BaseEntity

	// Code is the human-readable identifier, stored uppercase
	Code string `db:"code" json:"code"`

	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// NewCatalog creates a Catalog with a generated ID and a normalized code.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       NormalizeCode(code),
		Name:       strings.TrimSpace(name),
	}
}

// GetCode returns the catalog code.
func (c *Catalog) GetCode() string {
	return c.Code
}

// NormalizeCode trims and uppercases a catalog code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCatalog checks the shared name/code rules and records violations in v.
func (c *Catalog) ValidateCatalog(v *Violations, maxName, maxCode, maxDescription int) {
	v.Required("name", c.Name)
	v.MaxLen("name", c.Name, maxName)
	v.Required("code", c.Code)
	v.MaxLen("code", c.Code, maxCode)
	if c.Code != "" && !codePattern.MatchString(c.Code) {
		v.Add("code", "may contain only letters, digits and hyphens")
	}
	v.MaxLen("description", c.Description, maxDescription)
}

// Violations collects field errors while validating an entity.
type Violations []apperror.FieldError

// Add records a violated rule.
func (v *Violations) Add(field, message string) {
	*v = append(*v, apperror.FieldError{Field: field, Message: message})
}

// Required records a violation if s is blank.
func (v *Violations) Required(field, s string) {
	if strings.TrimSpace(s) == "" {
		v.Add(field, "is required")
	}
}

// MaxLen records a violation if s is longer than n characters. n <= 0 disables the check.
func (v *Violations) MaxLen(field, s string, n int) {
	if n > 0 && utf8.RuneCountInString(s) > n {
		v.Add(field, "must be at most "+strconv.Itoa(n)+" characters")
	}
}

// OneOf records a violation if s is not one of allowed.
func (v *Violations) OneOf(field, s string, allowed ...string) {
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	v.Add(field, "must be one of: "+strings.Join(allowed, ", "))
}

// Err returns a validation AppError, or nil when nothing was recorded.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return apperror.NewValidationFields(v)
}

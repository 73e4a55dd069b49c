// Package brand provides the Brand catalog, the owner of every other record.
package brand

import (
	"context"
	"database/sql/driver"
	"strings"

	"trackiq/internal/core/entity"
)

// Status of a brand.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ContactPerson is the brand's point of contact.
type ContactPerson struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (c *ContactPerson) Scan(src any) error         { return entity.ScanJSON(src, c) }
func (c ContactPerson) Value() (driver.Value, error) { return entity.JSONValue(c) }

// Address is a postal address.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

func (a *Address) Scan(src any) error         { return entity.ScanJSON(src, a) }
func (a Address) Value() (driver.Value, error) { return entity.JSONValue(a) }

// Brand is a product line owner. Name and code are unique.
type Brand struct {
	entity.Catalog

	Logo          string        `db:"logo" json:"logo,omitempty"`
	ContactPerson ContactPerson `db:"contact_person" json:"contactPerson"`
	Address       Address       `db:"address" json:"address"`
	Status        Status        `db:"status" json:"status"`
}

// NewBrand creates an active brand.
func NewBrand(code, name string) *Brand {
	return &Brand{
		Catalog: entity.NewCatalog(code, name),
		Status:  StatusActive,
	}
}

// Validate implements entity.Validatable.
func (b *Brand) Validate(ctx context.Context) error {
	var v entity.Violations
	b.ValidateCatalog(&v, 100, 10, 500)
	v.OneOf("status", string(b.Status), string(StatusActive), string(StatusInactive))
	if e := b.ContactPerson.Email; e != "" && !strings.Contains(e, "@") {
		v.Add("contactPerson.email", "must be a valid email")
	}
	return v.Err()
}

// IsActive reports whether new records may reference the brand.
func (b *Brand) IsActive() bool {
	return b.Status == StatusActive && !b.DeletionMark
}

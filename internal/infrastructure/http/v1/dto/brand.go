package dto

import (
	"trackiq/internal/core/entity"
	"trackiq/internal/domain/catalogs/brand"
	"trackiq/internal/infrastructure/http/v1/validation"
)

// ContactPersonDTO is the brand's point of contact.
type ContactPersonDTO struct {
	Name  string `json:"name" binding:"omitempty,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,phone"`
}

func (c ContactPersonDTO) toDomain() brand.ContactPerson {
	return brand.ContactPerson{Name: c.Name, Email: c.Email, Phone: validation.FormatPhone(c.Phone)}
}

// AddressDTO is a postal address.
type AddressDTO struct {
	Street     string `json:"street" binding:"omitempty,max=200"`
	City       string `json:"city" binding:"omitempty,max=100"`
	State      string `json:"state" binding:"omitempty,max=100"`
	Country    string `json:"country" binding:"omitempty,max=100"`
	PostalCode string `json:"postalCode" binding:"omitempty,max=20"`
}

func (a AddressDTO) toDomain() brand.Address {
	return brand.Address(a)
}

// --- Request DTOs ---

// CreateBrandRequest is the request body for creating a brand.
type CreateBrandRequest struct {
	Name          string           `json:"name" binding:"required,max=100"`
	Code          string           `json:"code" binding:"required,max=10,uppercase_code"`
	Description   string           `json:"description" binding:"omitempty,max=500"`
	Logo          string           `json:"logo"`
	ContactPerson ContactPersonDTO `json:"contactPerson"`
	Address       AddressDTO       `json:"address"`
	Status        string           `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateBrandRequest) ToEntity() *brand.Brand {
	b := brand.NewBrand(r.Code, r.Name)
	b.Description = r.Description
	b.Logo = r.Logo
	b.ContactPerson = r.ContactPerson.toDomain()
	b.Address = r.Address.toDomain()
	if r.Status != "" {
		b.Status = brand.Status(r.Status)
	}
	return b
}

// UpdateBrandRequest is the request body for updating a brand.
type UpdateBrandRequest struct {
	CreateBrandRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateBrandRequest) ApplyTo(b *brand.Brand) {
	b.Code = entity.NormalizeCode(r.Code)
	b.Name = r.Name
	b.Description = r.Description
	b.Logo = r.Logo
	b.ContactPerson = r.ContactPerson.toDomain()
	b.Address = r.Address.toDomain()
	if r.Status != "" {
		b.Status = brand.Status(r.Status)
	}
	b.Version = r.Version
}

// --- Response DTOs ---

// BrandResponse is the response body for a brand.
type BrandResponse struct {
	BaseResponse
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Logo          string              `json:"logo,omitempty"`
	ContactPerson brand.ContactPerson `json:"contactPerson"`
	Address       brand.Address       `json:"address"`
	Status        brand.Status        `json:"status"`
	IsActive      bool                `json:"isActive"`
}

// FromBrand creates response DTO from domain entity.
func FromBrand(b *brand.Brand) BrandResponse {
	return BrandResponse{
		BaseResponse:  FromBase(b.BaseEntity),
		Code:          b.Code,
		Name:          b.Name,
		Description:   b.Description,
		Logo:          b.Logo,
		ContactPerson: b.ContactPerson,
		Address:       b.Address,
		Status:        b.Status,
		IsActive:      b.IsActive(),
	}
}

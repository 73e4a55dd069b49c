package entity

import (
	"context"
	"time"

	"trackiq/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants.
// Validation never touches the database.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields every stored entity carries.
type BaseEntity struct {
	ID id.ID `db:"id" json:"id"`

	// DeletionMark indicates a soft-deleted entity
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy *id.ID    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy *id.ID    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewBaseEntity creates a BaseEntity with a generated ID and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the primary key.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// GetVersion returns the optimistic lock version.
func (b *BaseEntity) GetVersion() int {
	return b.Version
}

// Touch updates the modification timestamp.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// MarkDeleted sets the deletion mark.
func (b *BaseEntity) MarkDeleted() {
	b.DeletionMark = true
}

// IsDeleted reports the soft-delete flag.
func (b *BaseEntity) IsDeleted() bool {
	return b.DeletionMark
}

// SetVersion updates the version number (used by repository after sync).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

// SetCreatedBy records the acting user on a new entity.
func (b *BaseEntity) SetCreatedBy(userID id.ID) {
	b.CreatedBy = &userID
	b.UpdatedBy = &userID
}

// SetUpdatedBy records the acting user on a modified entity.
func (b *BaseEntity) SetUpdatedBy(userID id.ID) {
	b.UpdatedBy = &userID
}

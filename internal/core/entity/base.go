package entity

import (
	"context"
	"time"

	"opstock/internal/core/id"
)

// Validatable is the contract the generic catalog service requires: an
// entity checks its own invariants without touching the database.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity holds the columns every stored row carries. Version backs the
// optimistic lock; repositories bump it on update.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// DeletionMark flags a soft-deleted row
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	Version int `db:"version" json:"version"`
}

// NewBaseEntity generates an ID and starts the version at 1.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// Touch increments the version for the optimistic lock.
func (b *BaseEntity) Touch() {
	b.Version++
}

// BaseCatalog is the base for reference data. Catalogs carry no audit
// columns of their own.
type BaseCatalog struct {
	BaseEntity
}

func NewBaseCatalog() BaseCatalog {
	return BaseCatalog{BaseEntity: NewBaseEntity()}
}

// BaseDocument is the base for business transactions, adding audit columns.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch refreshes UpdatedAt along with the version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.BaseEntity.Touch()
}

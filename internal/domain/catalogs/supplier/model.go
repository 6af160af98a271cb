// Package supplier provides the supplier catalog.
package supplier

import (
	"context"
	"strings"

	"opstock/internal/core/apperror"
	"opstock/internal/core/entity"
)

// Supplier represents a vendor materials are purchased from.
type Supplier struct {
	entity.Catalog

	// ContactPerson - primary contact name
	ContactPerson string `db:"contact_person" json:"contactPerson"`

	// Phone - contact phone number
	Phone string `db:"phone" json:"phone"`

	// Email - contact email
	Email string `db:"email" json:"email,omitempty"`

	// Address - postal address
	Address string `db:"address" json:"address,omitempty"`

	// Active suppliers can be referenced by new inward requests
	Active bool `db:"active" json:"active"`
}

// NewSupplier creates a new active supplier.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
		Active:  true,
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return apperror.NewValidation("invalid email address").
			WithDetail("field", "email")
	}

	return nil
}

package entity

import (
	"context"

	"opstock/internal/core/apperror"
)

// Catalog is the base type for reference data such as materials, suppliers
// and locations. Code is the human-readable unique identifier; when left
// empty on create, the owning service assigns one from the numerator.
type Catalog struct {
	BaseCatalog

	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable. Code is not checked here since it may
// still be unassigned before the create hooks run.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

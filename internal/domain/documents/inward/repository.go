package inward

import (
	"context"
	"time"

	"opstock/internal/core/id"
	"opstock/internal/domain"
)

// ListFilter selects inward requests.
type ListFilter struct {
	MaterialID *id.ID
	SupplierID *id.ID
	LocationID *id.ID
	Status     Status
	From       *time.Time
	To         *time.Time

	Limit  int
	Offset int
}

// DefaultListFilter returns a filter with sane pagination.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// Repository defines persistence for inward request documents.
type Repository interface {
	Create(ctx context.Context, req *Request) error

	GetByID(ctx context.Context, requestID id.ID) (*Request, error)

	GetByNumber(ctx context.Context, number string) (*Request, error)

	// GetForUpdate loads a request with a row lock; must run inside a
	// transaction. Serializes concurrent approvals of the same request.
	GetForUpdate(ctx context.Context, requestID id.ID) (*Request, error)

	// Update persists the decision fields with an optimistic version check.
	Update(ctx context.Context, req *Request) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Request], error)
}

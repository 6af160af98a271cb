// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"opstock/internal/core/entity"
	"opstock/internal/core/id"
)

// ListFilter carries the options every list endpoint accepts.
type ListFilter struct {
	// Search matches a substring of name or code
	Search string

	// IDs restricts the result to these identifiers
	IDs []id.ID

	// IncludeDeleted also returns soft-deleted rows
	IncludeDeleted bool

	// OrderBy names the sort field; a leading "-" means descending
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository is the persistence contract shared by material, supplier
// and location catalogs. Delete removes the row; SetDeletionMark is the soft
// delete, the row stays in the table with deletion_mark set.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	GetByCode(ctx context.Context, code string) (T, error)

	// Update applies optimistic locking on the version column.
	Update(ctx context.Context, entity T) error

	Delete(ctx context.Context, id id.ID) error
	SetDeletionMark(ctx context.Context, id id.ID, marked bool) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
	Exists(ctx context.Context, id id.ID) (bool, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// HookEvent identifies a lifecycle point in the generic catalog service.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook runs at a lifecycle point. Returning an error from a before-hook
// aborts the operation.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry holds the hooks a catalog service registers at construction.
// Registration is not synchronized; register everything before serving.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On appends a hook for the event; hooks run in registration order.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run invokes the event's hooks, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

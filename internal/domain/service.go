// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"
	"fmt"

	"opstock/internal/core/apperror"
	"opstock/internal/core/entity"
	"opstock/internal/core/id"
	"opstock/internal/core/tx"
	"opstock/pkg/logger"
	"opstock/pkg/numerator"
)

// CatalogService implements the CRUD flow shared by every catalog: validate,
// run before-hooks, write inside a transaction, run after-hooks. Concrete
// catalog services embed it and add their own hooks and queries.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	numerator *numerator.Service
	hooks     *HookRegistry[T]

	// entityName for error messages and numerator prefix
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	Numerator  *numerator.Service
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		numerator:  cfg.Numerator,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry so embedding services can register theirs.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Numerator returns the injected numbering service (for code generation hooks).
func (s *CatalogService[T]) Numerator() *numerator.Service {
	return s.numerator
}

// Create validates and inserts a new catalog entity.
func (s *CatalogService[T]) Create(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.asValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeCreate, ent); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ent); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterCreate, ent)
	return nil
}

// Update validates and saves changes; the repository enforces the optimistic
// lock on the version column.
func (s *CatalogService[T]) Update(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.asValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, ent); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, ent); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterUpdate, ent)
	return nil
}

// Delete removes the entity row. The repository turns a foreign-key
// violation into a conflict error, so entries referenced by documents or
// stock records survive. SetDeletionMark is the soft-delete path. The entity
// is loaded first so delete hooks can see the current state.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.asGetErr(err, entityID.String())
	}
	if err := s.hooks.Run(ctx, BeforeDelete, ent); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterDelete, ent)
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return ent, s.asGetErr(err, entityID.String())
	}
	return ent, nil
}

// GetByCode retrieves entity by code.
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	ent, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return ent, s.asGetErr(err, code)
	}
	return ent, nil
}

// SetDeletionMark sets or clears the deletion mark.
func (s *CatalogService[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	return s.repo.SetDeletionMark(ctx, entityID, marked)
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks if entity exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

// runAfter runs after-hooks outside the transaction. A failure here cannot
// undo the committed write, so it is logged rather than returned.
func (s *CatalogService[T]) runAfter(ctx context.Context, event HookEvent, ent T) {
	if err := s.hooks.Run(ctx, event, ent); err != nil {
		logger.Warn(ctx, string(event)+" hook failed", "entity", s.entityName, "error", err)
	}
}

func (s *CatalogService[T]) asValidationErr(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) asGetErr(err error, idOrCode any) error {
	switch {
	case err == nil:
		return nil
	case apperror.IsNotFound(err):
		// map not-found onto this catalog's entity name
		return apperror.NewNotFound(s.entityName, idOrCode)
	case apperror.IsAppError(err):
		return err
	default:
		return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
	}
}

package material

import (
	"context"
	"fmt"
	"strings"
	"time"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/tx"
	"opstock/internal/core/types"
	"opstock/internal/domain"
	"opstock/pkg/numerator"
)

// CodePrefix for generated material codes (MAT-2026-00001).
const CodePrefix = "MAT"

// Service provides business logic for the material catalog.
type Service struct {
	*domain.CatalogService[*Material]

	repo      Repository
	txManager tx.Manager
}

// NewService creates the material service and registers its hooks.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Material]{
			Repo:       repo,
			TxManager:  txManager,
			Numerator:  num,
			EntityName: "material",
		}),
		repo:      repo,
		txManager: txManager,
	}

	s.Hooks().On(domain.BeforeCreate, s.beforeSave)
	s.Hooks().On(domain.BeforeCreate, s.assignCode)
	s.Hooks().On(domain.BeforeUpdate, s.beforeSave)

	return s
}

// beforeSave normalizes the material and enforces case-insensitive name
// uniqueness across the catalog.
func (s *Service) beforeSave(ctx context.Context, m *Material) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Category == "" {
		m.Category = DefaultCategory
	}
	if m.Suppliers == nil {
		m.Suppliers = make(SupplierMap)
	}
	if m.Locations == nil {
		m.Locations = make(LocationMap)
	}
	m.RecomputeStatus()

	existing, err := s.repo.FindByNameFold(ctx, m.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("check material name uniqueness: %w", err)
	}
	if existing.ID != m.ID {
		return apperror.NewDuplicate("material", "name", m.Name)
	}
	return nil
}

// assignCode generates the catalog code when the caller did not supply one.
func (s *Service) assignCode(ctx context.Context, m *Material) error {
	if m.Code != "" {
		return nil
	}

	code, err := s.Numerator().GetNextNumber(ctx, numerator.DefaultConfig(CodePrefix), nil, time.Now())
	if err != nil {
		return fmt.Errorf("generate material code: %w", err)
	}
	m.Code = code
	return nil
}

// AdjustSupplierQuantity applies a manual delta to one supplier sub-ledger
// entry under a row lock. Decrements clamp at zero; the price is updated only
// on increments when provided. The derived status is refreshed in the same
// transaction.
func (s *Service) AdjustSupplierQuantity(ctx context.Context, materialID, supplierID id.ID, delta types.Quantity, newPrice *types.Money) (*Material, error) {
	var result *Material

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, materialID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("material", materialID.String())
			}
			return fmt.Errorf("lock material: %w", err)
		}

		m.AdjustSupplierQuantity(supplierID, delta, newPrice)
		m.RecomputeStatus()

		// version bump is the repo's job (optimistic locking)
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("update material: %w", err)
		}

		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListFiltered lists materials with material-specific filtering.
func (s *Service) ListFiltered(ctx context.Context, filter ListFilter) (domain.ListResult[*Material], error) {
	return s.repo.ListFiltered(ctx, filter)
}

// ListLowStock returns materials at or under their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Material], error) {
	return s.repo.ListFiltered(ctx, ListFilter{
		ListFilter:   filter,
		LowStockOnly: true,
	})
}

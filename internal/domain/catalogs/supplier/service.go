package supplier

import (
	"context"
	"fmt"
	"time"

	"opstock/internal/core/apperror"
	"opstock/internal/core/tx"
	"opstock/internal/domain"
	"opstock/pkg/numerator"
)

// CodePrefix for generated supplier codes (SUP-2026-00001).
const CodePrefix = "SUP"

// Repository defines persistence for the supplier catalog.
type Repository interface {
	domain.CatalogRepository[*Supplier]
}

// Service provides business logic for the supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]

	repo Repository
}

// NewService creates the supplier service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
			Repo:       repo,
			TxManager:  txManager,
			Numerator:  num,
			EntityName: "supplier",
		}),
		repo: repo,
	}

	s.Hooks().On(domain.BeforeCreate, s.assignCode)
	s.Hooks().On(domain.BeforeCreate, s.checkCodeUnique)

	return s
}

func (s *Service) assignCode(ctx context.Context, sup *Supplier) error {
	if sup.Code != "" {
		return nil
	}

	code, err := s.Numerator().GetNextNumber(ctx, numerator.DefaultConfig(CodePrefix), nil, time.Now())
	if err != nil {
		return fmt.Errorf("generate supplier code: %w", err)
	}
	sup.Code = code
	return nil
}

func (s *Service) checkCodeUnique(ctx context.Context, sup *Supplier) error {
	exists, err := s.repo.ExistsByCode(ctx, sup.Code)
	if err != nil {
		return fmt.Errorf("check supplier code uniqueness: %w", err)
	}
	if exists {
		return apperror.NewDuplicate("supplier", "code", sup.Code)
	}
	return nil
}

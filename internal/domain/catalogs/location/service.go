package location

import (
	"context"
	"fmt"
	"time"

	"opstock/internal/core/tx"
	"opstock/internal/domain"
	"opstock/pkg/numerator"
)

// CodePrefix for generated location codes (LOC-2026-00001).
const CodePrefix = "LOC"

// Repository defines persistence for the location catalog.
type Repository interface {
	domain.CatalogRepository[*Location]
}

// Service provides business logic for the location catalog.
type Service struct {
	*domain.CatalogService[*Location]
}

// NewService creates the location service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Location]{
			Repo:       repo,
			TxManager:  txManager,
			Numerator:  num,
			EntityName: "location",
		}),
	}

	s.Hooks().On(domain.BeforeCreate, s.assignCode)

	return s
}

func (s *Service) assignCode(ctx context.Context, l *Location) error {
	if l.Code != "" {
		return nil
	}

	code, err := s.Numerator().GetNextNumber(ctx, numerator.DefaultConfig(CodePrefix), nil, time.Now())
	if err != nil {
		return fmt.Errorf("generate location code: %w", err)
	}
	l.Code = code
	return nil
}

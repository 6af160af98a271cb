package ledger

import (
	"context"
	"time"

	"opstock/internal/core/id"
	"opstock/internal/domain"
)

// TransactionFilter selects transaction history rows.
type TransactionFilter struct {
	MaterialID *id.ID
	LocationID *id.ID
	SupplierID *id.ID
	Types      []TransactionType
	From       *time.Time
	To         *time.Time

	Limit  int
	Offset int
}

// DefaultTransactionFilter returns a filter with sane pagination.
func DefaultTransactionFilter() TransactionFilter {
	return TransactionFilter{Limit: 50}
}

// Repository defines persistence for the stock transaction register.
//
// The interface deliberately has no update or delete on transactions and no
// decrement on the location balances: history is append-only, and the
// production-facing draw-down happens in the resstock register.
type Repository interface {
	// Append inserts one immutable transaction row.
	Append(ctx context.Context, tx *StockTransaction) error

	// GetByID loads one transaction row.
	GetByID(ctx context.Context, txID id.ID) (*StockTransaction, error)

	// List returns transaction history, newest first.
	List(ctx context.Context, filter TransactionFilter) (domain.ListResult[*StockTransaction], error)

	// IncrementInventory adds the receipt delta to the (material, location)
	// balance, creating the row when absent, and refreshes the cost price,
	// batch and expiry from the receipt. Delta must be positive.
	IncrementInventory(ctx context.Context, upd InventoryUpdate) error

	// GetInventory loads one balance row.
	GetInventory(ctx context.Context, materialID, locationID id.ID) (*LocationInventory, error)

	// ListInventoryByMaterial returns all location balances for a material.
	ListInventoryByMaterial(ctx context.Context, materialID id.ID) ([]*LocationInventory, error)
}

// Service exposes read access to the movement history.
type Service struct {
	repo Repository
}

// NewService creates the ledger query service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetTransaction loads one transaction row.
func (s *Service) GetTransaction(ctx context.Context, txID id.ID) (*StockTransaction, error) {
	return s.repo.GetByID(ctx, txID)
}

// ListTransactions returns movement history, newest first.
func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) (domain.ListResult[*StockTransaction], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultTransactionFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// ListInventoryByMaterial returns all location balances for a material.
func (s *Service) ListInventoryByMaterial(ctx context.Context, materialID id.ID) ([]*LocationInventory, error) {
	return s.repo.ListInventoryByMaterial(ctx, materialID)
}

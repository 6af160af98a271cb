// Package consumption provides the production consumption service: drawing
// material down from the stock aggregate when it is used in production.
package consumption

import (
	"context"
	"fmt"
	"time"

	"opstock/internal/core/apperror"
	corecontext "opstock/internal/core/context"
	"opstock/internal/core/id"
	"opstock/internal/core/tx"
	"opstock/internal/core/types"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/domain/registers/resstock"
	"opstock/pkg/logger"
)

// MissingStockPolicy decides what happens when production consumes a material
// that has no stock aggregate yet.
type MissingStockPolicy string

const (
	// PolicySkip logs and reports zero consumption without failing, so a
	// missing stock record never blocks production
	PolicySkip MissingStockPolicy = "skip"
	// PolicyFail rejects the consumption with a no-stock-record error
	PolicyFail MissingStockPolicy = "fail"
)

// Valid reports whether the policy is a known value.
func (p MissingStockPolicy) Valid() bool {
	return p == PolicySkip || p == PolicyFail
}

// Item is one material drawn by a consumption call.
type Item struct {
	MaterialID id.ID          `json:"materialId"`
	Quantity   types.Quantity `json:"quantity"`
}

// Result reports the outcome for one consumed item.
type Result struct {
	MaterialID id.ID `json:"materialId"`

	// Requested quantity and the quantity actually drawn (clamped at the
	// available remainder)
	Requested types.Quantity `json:"requested"`
	Consumed  types.Quantity `json:"consumed"`

	// Skipped is true when the material had no stock record and the
	// missing-stock policy is skip
	Skipped bool `json:"skipped"`

	// Remaining stock after the draw (zero when skipped)
	Remaining types.Quantity `json:"remaining"`
}

// Service draws stock from the aggregate register for production use.
type Service struct {
	stocks    resstock.Repository
	movements ledger.Repository
	materials material.Repository
	txManager tx.Manager

	onMissing MissingStockPolicy
}

// NewService creates the consumption service. An unknown policy falls back
// to skip, matching the default of not blocking production.
func NewService(stocks resstock.Repository, movements ledger.Repository, materials material.Repository, txManager tx.Manager, onMissing MissingStockPolicy) *Service {
	if !onMissing.Valid() {
		onMissing = PolicySkip
	}
	return &Service{
		stocks:    stocks,
		movements: movements,
		materials: materials,
		txManager: txManager,
		onMissing: onMissing,
	}
}

// Consume draws one material from stock. The note labels the draw in the
// aggregate history and the transaction register (production order, batch).
func (s *Service) Consume(ctx context.Context, materialID id.ID, quantity types.Quantity, note string) (*Result, error) {
	results, err := s.ConsumeBatch(ctx, []Item{{MaterialID: materialID, Quantity: quantity}}, note)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// ConsumeBatch draws several materials in one transaction: a production run
// either books all its inputs or none.
func (s *Service) ConsumeBatch(ctx context.Context, items []Item, note string) ([]Result, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	for i, item := range items {
		if id.IsNil(item.MaterialID) {
			return nil, apperror.NewValidation("material is required").
				WithDetail("field", fmt.Sprintf("items[%d].materialId", i))
		}
		if !item.Quantity.IsPositive() {
			return nil, apperror.NewValidation("quantity must be positive").
				WithDetail("field", fmt.Sprintf("items[%d].quantity", i))
		}
	}

	results := make([]Result, 0, len(items))

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		performedBy := corecontext.GetUserID(ctx)

		for _, item := range items {
			res, err := s.consumeOne(ctx, item, note, performedBy, now)
			if err != nil {
				return err
			}
			results = append(results, *res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// consumeOne draws one item under the aggregate row lock. Must run inside a
// transaction.
func (s *Service) consumeOne(ctx context.Context, item Item, note, performedBy string, now time.Time) (*Result, error) {
	stock, err := s.stocks.GetForUpdate(ctx, item.MaterialID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return nil, fmt.Errorf("lock stock aggregate: %w", err)
		}

		if s.onMissing == PolicyFail {
			return nil, apperror.NewNoStockRecord(item.MaterialID.String())
		}

		logger.Warn(ctx, "no stock record for consumed material, skipping",
			"material", item.MaterialID.String(),
			"quantity", item.Quantity.String())
		return &Result{
			MaterialID: item.MaterialID,
			Requested:  item.Quantity,
			Skipped:    true,
		}, nil
	}

	// the aggregate mirrors the catalog's reorder threshold from the last
	// inward approval; refresh it so a raised threshold affects the status
	// of this draw, not only the next receipt
	if m, err := s.materials.GetByID(ctx, item.MaterialID); err == nil {
		stock.SyncMaterial(m)
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("load material: %w", err)
	}

	consumed := stock.Consume(item.Quantity, note, now)
	if err := s.stocks.Upsert(ctx, stock); err != nil {
		return nil, fmt.Errorf("upsert stock aggregate: %w", err)
	}

	// the register records what actually left stock; a fully clamped draw
	// moved nothing and gets no row
	if consumed.IsPositive() {
		movement := ledger.NewTransaction(ledger.TypeOutward, item.MaterialID, consumed, types.ZeroMoney())
		movement.PerformedBy = performedBy
		movement.Comment = note
		movement.OccurredAt = now
		if err := s.movements.Append(ctx, movement); err != nil {
			return nil, fmt.Errorf("append stock transaction: %w", err)
		}
	}

	logger.Info(ctx, "material consumed",
		"material", stock.MaterialName,
		"requested", item.Quantity.String(),
		"consumed", consumed.String(),
		"remaining", stock.Remaining.String())

	return &Result{
		MaterialID: item.MaterialID,
		Requested:  item.Quantity,
		Consumed:   consumed,
		Remaining:  stock.Remaining,
	}, nil
}

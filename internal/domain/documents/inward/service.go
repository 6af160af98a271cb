package inward

import (
	"context"
	"fmt"
	"strings"
	"time"

	"opstock/internal/core/apperror"
	corecontext "opstock/internal/core/context"
	"opstock/internal/core/id"
	"opstock/internal/core/tx"
	"opstock/internal/domain"
	"opstock/internal/domain/catalogs/location"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/catalogs/supplier"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/domain/registers/resstock"
	"opstock/pkg/logger"
	"opstock/pkg/numerator"
)

// NumberPrefix for generated request numbers (SIR-2026-00001).
const NumberPrefix = "SIR"

// Service provides the inward request workflow.
//
// Approval is the only write path into stock: it posts the supplier and
// location sub-ledgers on the material, the transaction register, the
// location balance and the stock aggregate inside one database transaction.
type Service struct {
	repo      Repository
	materials material.Repository
	suppliers supplier.Repository
	locations location.Repository
	stocks    resstock.Repository
	movements ledger.Repository

	txManager tx.Manager
	numerator *numerator.Service
}

// Deps collects the service dependencies.
type Deps struct {
	Repo      Repository
	Materials material.Repository
	Suppliers supplier.Repository
	Locations location.Repository
	Stocks    resstock.Repository
	Movements ledger.Repository
	TxManager tx.Manager
	Numerator *numerator.Service
}

// NewService creates the inward request service.
func NewService(d Deps) *Service {
	return &Service{
		repo:      d.Repo,
		materials: d.Materials,
		suppliers: d.Suppliers,
		locations: d.Locations,
		stocks:    d.Stocks,
		movements: d.Movements,
		txManager: d.TxManager,
		numerator: d.Numerator,
	}
}

// Submit validates and stores a new pending request. The reference number is
// generated when the caller did not supply one.
func (s *Service) Submit(ctx context.Context, req *Request) error {
	req.Status = StatusPending
	req.Processed = false
	req.TotalValue = req.CostPrice.Mul(req.Quantity.Decimal())
	if req.RequestedBy == "" {
		req.RequestedBy = corecontext.GetUserID(ctx)
	}

	if err := req.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if req.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, req.Date)
			if err != nil {
				return fmt.Errorf("generate request number: %w", err)
			}
			req.Number = number
		}

		if err := s.repo.Create(ctx, req); err != nil {
			return fmt.Errorf("create inward request: %w", err)
		}

		logger.Info(ctx, "inward request submitted",
			"request", req.Number,
			"material", req.MaterialID.String(),
			"quantity", req.Quantity.String())
		return nil
	})
}

// Approve posts a pending request into stock.
//
// Approving an already processed request is a no-op that returns the stored
// request unchanged, so retries and double-clicks are harmless. Approving a
// rejected request is an error.
func (s *Service) Approve(ctx context.Context, requestID id.ID, approver, notes string) (*Request, error) {
	var result *Request

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		req, err := s.repo.GetForUpdate(ctx, requestID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("inward request", requestID.String())
			}
			return fmt.Errorf("lock inward request: %w", err)
		}

		if req.Processed {
			logger.Info(ctx, "inward request already processed, approval skipped",
				"request", req.Number)
			result = req
			return nil
		}
		if req.Status == StatusRejected {
			return apperror.NewBusinessRule(apperror.CodeRequestRejected,
				"cannot approve a rejected request").
				WithDetail("requestId", requestID.String())
		}

		if err := s.post(ctx, req, approver, notes); err != nil {
			return err
		}

		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject declines a pending request. No stock is touched.
func (s *Service) Reject(ctx context.Context, requestID id.ID, approver, reason string) (*Request, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.NewValidation("rejection reason is required").
			WithDetail("field", "reason")
	}

	var result *Request

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		req, err := s.repo.GetForUpdate(ctx, requestID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("inward request", requestID.String())
			}
			return fmt.Errorf("lock inward request: %w", err)
		}

		if req.Processed {
			return apperror.NewAlreadyProcessed(requestID.String())
		}
		if req.Status == StatusRejected {
			result = req
			return nil
		}

		req.markRejected(approver, reason, time.Now().UTC())
		if err := s.repo.Update(ctx, req); err != nil {
			return fmt.Errorf("update inward request: %w", err)
		}

		logger.Info(ctx, "inward request rejected",
			"request", req.Number, "reason", reason)
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FastTrack submits and approves a request in one transaction. Used for
// direct stock entry when no separate approval step is wanted.
func (s *Service) FastTrack(ctx context.Context, req *Request, approver string) (*Request, error) {
	req.Status = StatusPending
	req.Processed = false
	req.TotalValue = req.CostPrice.Mul(req.Quantity.Decimal())
	if req.RequestedBy == "" {
		req.RequestedBy = approver
	}

	if err := req.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if req.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, req.Date)
			if err != nil {
				return fmt.Errorf("generate request number: %w", err)
			}
			req.Number = number
		}

		if err := s.repo.Create(ctx, req); err != nil {
			return fmt.Errorf("create inward request: %w", err)
		}

		return s.post(ctx, req, approver, "fast-tracked")
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetByID loads one request.
func (s *Service) GetByID(ctx context.Context, requestID id.ID) (*Request, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("inward request", requestID.String())
		}
		return nil, err
	}
	return req, nil
}

// List returns requests matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Request], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// post performs the approval fan-out. Must run inside a transaction with the
// request row already locked.
func (s *Service) post(ctx context.Context, req *Request, approver, notes string) error {
	now := time.Now().UTC()

	// material row lock orders concurrent approvals of different requests
	// touching the same material
	m, err := s.materials.GetForUpdate(ctx, req.MaterialID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("material", req.MaterialID.String())
		}
		return fmt.Errorf("lock material: %w", err)
	}

	if req.SupplierID != nil {
		m.AdjustSupplierQuantity(*req.SupplierID, req.Quantity, &req.CostPrice)
	}
	m.AdjustLocationQuantity(req.LocationID, req.Quantity)
	m.RecomputeStatus()
	if err := s.materials.Update(ctx, m); err != nil {
		return fmt.Errorf("update material: %w", err)
	}

	movement := ledger.NewTransaction(ledger.TypeInward, req.MaterialID, req.Quantity, req.CostPrice)
	movement.LocationID = &req.LocationID
	movement.SupplierID = req.SupplierID
	movement.Reference = req.Number
	movement.RequestID = &req.ID
	movement.PerformedBy = approver
	movement.OccurredAt = now
	if err := s.movements.Append(ctx, movement); err != nil {
		return fmt.Errorf("append stock transaction: %w", err)
	}

	inv := ledger.InventoryUpdate{
		MaterialID:  req.MaterialID,
		LocationID:  req.LocationID,
		Delta:       req.Quantity,
		CostPrice:   req.CostPrice,
		BatchNumber: req.BatchNumber,
		ExpiryDate:  req.ExpiryDate,
		At:          now,
	}
	if err := s.movements.IncrementInventory(ctx, inv); err != nil {
		return fmt.Errorf("increment location inventory: %w", err)
	}

	stock, err := s.stocks.GetForUpdate(ctx, req.MaterialID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return fmt.Errorf("lock stock aggregate: %w", err)
		}
		stock = resstock.New(m)
	}
	stock.SyncMaterial(m)
	stock.ApplyPurchase(req.SupplierID, req.LocationID, req.Quantity, req.CostPrice, req.Number, now)
	if err := s.stocks.Upsert(ctx, stock); err != nil {
		return fmt.Errorf("upsert stock aggregate: %w", err)
	}

	req.markApproved(approver, notes, movement.ID, now)
	if err := s.repo.Update(ctx, req); err != nil {
		return fmt.Errorf("update inward request: %w", err)
	}

	logger.Info(ctx, "inward request approved",
		"request", req.Number,
		"material", m.Name,
		"quantity", req.Quantity.String(),
		"transaction", movement.ID.String())
	return nil
}

// checkReferences verifies the request points at existing catalog entries.
func (s *Service) checkReferences(ctx context.Context, req *Request) error {
	ok, err := s.materials.Exists(ctx, req.MaterialID)
	if err != nil {
		return fmt.Errorf("check material: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("material", req.MaterialID.String())
	}

	if req.SupplierID != nil {
		ok, err = s.suppliers.Exists(ctx, *req.SupplierID)
		if err != nil {
			return fmt.Errorf("check supplier: %w", err)
		}
		if !ok {
			return apperror.NewNotFound("supplier", req.SupplierID.String())
		}
	}

	ok, err = s.locations.Exists(ctx, req.LocationID)
	if err != nil {
		return fmt.Errorf("check location: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("location", req.LocationID.String())
	}

	return nil
}

package dto

import (
	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
	"opstock/internal/domain/consumption"
)

// --- Request DTOs ---

// ConsumeItemRequest is one material draw within a consumption request.
type ConsumeItemRequest struct {
	MaterialID string         `json:"materialId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
}

// ConsumeRequest is the request body for production consumption.
type ConsumeRequest struct {
	Items []ConsumeItemRequest `json:"items" binding:"required,min=1"`
	Note  string               `json:"note"`
}

// ToItems converts DTO items to domain items.
func (r *ConsumeRequest) ToItems() ([]consumption.Item, error) {
	items := make([]consumption.Item, len(r.Items))
	for i, item := range r.Items {
		materialID, err := id.Parse(item.MaterialID)
		if err != nil {
			return nil, apperror.NewValidation("invalid materialId format").
				WithDetail("materialId", item.MaterialID)
		}
		items[i] = consumption.Item{
			MaterialID: materialID,
			Quantity:   item.Quantity,
		}
	}
	return items, nil
}

// --- Response DTOs ---

// ConsumeResultResponse is the outcome for one consumed material.
type ConsumeResultResponse struct {
	MaterialID string         `json:"materialId"`
	Requested  types.Quantity `json:"requested"`
	Consumed   types.Quantity `json:"consumed"`
	Skipped    bool           `json:"skipped"`
	Remaining  types.Quantity `json:"remaining"`
}

// ConsumeResponse wraps the per-item results.
type ConsumeResponse struct {
	Results []ConsumeResultResponse `json:"results"`
}

// FromConsumeResults creates response DTO from domain results.
func FromConsumeResults(results []consumption.Result) ConsumeResponse {
	resp := ConsumeResponse{Results: make([]ConsumeResultResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = ConsumeResultResponse{
			MaterialID: r.MaterialID.String(),
			Requested:  r.Requested,
			Consumed:   r.Consumed,
			Skipped:    r.Skipped,
			Remaining:  r.Remaining,
		}
	}
	return resp
}

package dto

import (
	"opstock/internal/domain/catalogs/location"
)

// --- Request DTOs ---

// CreateLocationRequest is the request body for creating a location.
type CreateLocationRequest struct {
	Code    string        `json:"code"`
	Name    string        `json:"name" binding:"required"`
	Type    location.Type `json:"type" binding:"required"`
	Address string        `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateLocationRequest) ToEntity() *location.Location {
	l := location.NewLocation(r.Code, r.Name, r.Type)
	l.Address = r.Address
	return l
}

// UpdateLocationRequest is the request body for updating a location.
type UpdateLocationRequest struct {
	Code    string        `json:"code"`
	Name    string        `json:"name" binding:"required"`
	Type    location.Type `json:"type" binding:"required"`
	Address string        `json:"address"`
	Active  *bool         `json:"active"`
	Version int           `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateLocationRequest) ApplyTo(l *location.Location) {
	l.Code = r.Code
	l.Name = r.Name
	l.Type = r.Type
	l.Address = r.Address
	if r.Active != nil {
		l.Active = *r.Active
	}
	l.Version = r.Version
}

// --- Response DTOs ---

// LocationResponse is the response body for a location.
type LocationResponse struct {
	ID           string        `json:"id"`
	Code         string        `json:"code"`
	Name         string        `json:"name"`
	Type         location.Type `json:"type"`
	Address      string        `json:"address,omitempty"`
	Active       bool          `json:"active"`
	DeletionMark bool          `json:"deletionMark"`
	Version      int           `json:"version"`
}

// FromLocation creates response DTO from domain entity.
func FromLocation(l *location.Location) *LocationResponse {
	return &LocationResponse{
		ID:           l.ID.String(),
		Code:         l.Code,
		Name:         l.Name,
		Type:         l.Type,
		Address:      l.Address,
		Active:       l.Active,
		DeletionMark: l.DeletionMark,
		Version:      l.Version,
	}
}

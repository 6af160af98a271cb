// Package dto holds the request and response shapes of the HTTP API and
// their mapping to and from domain entities.
package dto

// ListResponse is the envelope for every paginated listing.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// SuccessResponse acknowledges an operation that returns no entity.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SetDeletionMarkRequest toggles the soft-delete mark on a catalog entry.
type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}

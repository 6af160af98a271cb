package handlers

import (
	"opstock/internal/domain/catalogs/location"
	"opstock/internal/infrastructure/http/v1/dto"
)

// LocationHTTPHandler is the generic catalog handler bound to locations.
type LocationHTTPHandler = CatalogHandler[
	*location.Location,
	dto.CreateLocationRequest,
	dto.UpdateLocationRequest,
]

// NewLocationHandler creates a new location handler.
func NewLocationHandler(base *BaseHandler, service *location.Service) *LocationHTTPHandler {
	config := CatalogHandlerConfig[
		*location.Location,
		dto.CreateLocationRequest,
		dto.UpdateLocationRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "location",
		MapCreateDTO: func(req dto.CreateLocationRequest) *location.Location {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateLocationRequest, existing *location.Location) *location.Location {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(l *location.Location) any {
			return dto.FromLocation(l)
		},
	}

	return NewCatalogHandler(base, config)
}

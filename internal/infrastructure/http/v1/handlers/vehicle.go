package handlers

import (
	"github.com/gin-gonic/gin"

	"showroom/internal/core/apperror"
	"showroom/internal/core/id"
	"showroom/internal/domain/catalogs/vehicle"
	"showroom/internal/domain/reservation"
	"showroom/internal/infrastructure/http/v1/dto"
)

// VehicleHandler handles vehicle endpoints: generic catalog CRUD plus
// inventory-state operations. A status change to "available" can offer
// the vehicle to the waiting list in the same request.
type VehicleHandler struct {
	*CatalogHandler[*vehicle.Vehicle, dto.CreateVehicleRequest, dto.UpdateVehicleRequest]
	service     *vehicle.Service
	coordinator *reservation.Coordinator
}

// NewVehicleHandler wires the vehicle service into the generic catalog
// handler.
func NewVehicleHandler(
	base *BaseHandler,
	service *vehicle.Service,
	coordinator *reservation.Coordinator,
) *VehicleHandler {
	config := CatalogHandlerConfig[
		*vehicle.Vehicle,
		dto.CreateVehicleRequest,
		dto.UpdateVehicleRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "vehicle",

		MapCreateDTO: func(req dto.CreateVehicleRequest) *vehicle.Vehicle {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateVehicleRequest, existing *vehicle.Vehicle) *vehicle.Vehicle {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *vehicle.Vehicle) any {
			return dto.FromVehicle(entity)
		},
	}

	return &VehicleHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
		coordinator:    coordinator,
	}
}

// ListAvailable handles GET /vehicles/available.
func (h *VehicleHandler) ListAvailable(c *gin.Context) {
	ctx := c.Request.Context()

	filter := h.ParseListFilter(c)

	result, err := h.service.ListAvailable(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromVehicle(item)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// SetStatus handles POST /vehicles/:id/status.
func (h *VehicleHandler) SetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	vehicleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetVehicleStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.SetStatus(ctx, vehicleID, vehicle.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	response := struct {
		Vehicle dto.VehicleResponse       `json:"vehicle"`
		Offer   *dto.OfferVehicleResponse `json:"offer,omitempty"`
	}{Vehicle: dto.FromVehicle(v)}

	// A vehicle that just became available can be matched against the
	// waiting list in the same request.
	if req.OfferToWaitingList && v.Status == vehicle.StatusAvailable {
		var salesPersonID id.ID
		if req.SalesPersonID != "" {
			salesPersonID, err = id.Parse(req.SalesPersonID)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid salesPersonId format"))
				return
			}
		}

		result, err := h.coordinator.OfferVehicle(ctx, reservation.OfferParams{
			Offer:         v.Offer(),
			SalesPersonID: salesPersonID,
			CreatedBy:     h.GetUserID(c),
		})
		if err != nil {
			h.Error(c, err)
			return
		}

		offer := &dto.OfferVehicleResponse{}
		if result.Allotment != nil {
			resp := dto.FromAllotment(result.Allotment)
			offer.Allotment = &resp
		}
		if result.Notified != nil {
			resp := dto.FromWaitingListEntry(result.Notified)
			offer.Notified = &resp
		}
		response.Offer = offer
	}

	h.OK(c, response)
}

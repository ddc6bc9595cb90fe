package handlers

import (
	"github.com/gin-gonic/gin"

	"showroom/internal/core/apperror"
	"showroom/internal/core/id"
	"showroom/internal/domain/catalogs/vehicle"
	"showroom/internal/domain/reservation"
	"showroom/internal/infrastructure/http/v1/dto"
)

// ReservationHandler exposes the coordinated operations that couple
// allotments and the waiting list.
type ReservationHandler struct {
	*BaseHandler
	coordinator *reservation.Coordinator
	vehicles    *vehicle.Service
}

// NewReservationHandler creates a new reservation handler.
func NewReservationHandler(
	base *BaseHandler,
	coordinator *reservation.Coordinator,
	vehicles *vehicle.Service,
) *ReservationHandler {
	return &ReservationHandler{
		BaseHandler: base,
		coordinator: coordinator,
		vehicles:    vehicles,
	}
}

// OfferVehicle handles POST /reservations/offer - matches an available
// vehicle against the waiting list.
func (h *ReservationHandler) OfferVehicle(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OfferVehicleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	vehicleID, err := id.Parse(req.VehicleID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid vehicleId format"))
		return
	}

	v, err := h.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if v.Status != vehicle.StatusAvailable {
		h.Error(c, apperror.NewInvalidState("vehicle is not available for offering").
			WithDetail("status", string(v.Status)))
		return
	}

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

	response := dto.OfferVehicleResponse{}
	if result.Allotment != nil {
		resp := dto.FromAllotment(result.Allotment)
		response.Allotment = &resp
	}
	if result.Notified != nil {
		resp := dto.FromWaitingListEntry(result.Notified)
		response.Notified = &resp
	}

	h.OK(c, response)
}

// ConvertToOrder handles POST /allotments/:id/convert.
func (h *ReservationHandler) ConvertToOrder(c *gin.Context) {
	allotmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ConvertToOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.coordinator.ConvertAllotmentToOrder(c.Request.Context(), allotmentID, req.OrderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAllotment(a))
}

// CancelAllotment handles POST /allotments/:id/cancel.
func (h *ReservationHandler) CancelAllotment(c *gin.Context) {
	allotmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.coordinator.CancelAllotment(c.Request.Context(), allotmentID, req.Reason, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAllotment(a))
}

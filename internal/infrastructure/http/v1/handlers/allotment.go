package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"showroom/internal/core/apperror"
	"showroom/internal/core/id"
	"showroom/internal/core/types"
	"showroom/internal/domain"
	"showroom/internal/domain/allotment"
	"showroom/internal/infrastructure/http/v1/dto"
)

// AllotmentHandler handles allotment endpoints.
type AllotmentHandler struct {
	*BaseHandler
	service *allotment.Service
}

// NewAllotmentHandler creates a new allotment handler.
func NewAllotmentHandler(base *BaseHandler, service *allotment.Service) *AllotmentHandler {
	return &AllotmentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /allotments.
func (h *AllotmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := allotment.ListFilter{ListFilter: h.ParseListFilter(c)}

	if v := c.Query("vehicleId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid vehicleId format"))
			return
		}
		filter.VehicleID = &parsed
	}
	if v := c.Query("customerId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerID = &parsed
	}
	if v := c.Query("status"); v != "" {
		status := allotment.Status(v)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("unknown status").WithDetail("value", v))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("dateFrom"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom, expected RFC3339"))
			return
		}
		filter.DateFrom = &parsed
	}
	if v := c.Query("dateTo"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo, expected RFC3339"))
			return
		}
		filter.DateTo = &parsed
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromAllotment(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /allotments/:id.
func (h *AllotmentHandler) Get(c *gin.Context) {
	allotmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), allotmentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAllotment(a))
}

// GetByNumber handles GET /allotments/by-number/:number.
func (h *AllotmentHandler) GetByNumber(c *gin.Context) {
	a, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAllotment(a))
}

// Create handles POST /allotments - direct reservation of a vehicle for
// a walk-in customer.
func (h *AllotmentHandler) Create(c *gin.Context) {
	var req dto.CreateAllotmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	vehicleID, err := id.Parse(req.VehicleID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid vehicleId format"))
		return
	}
	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customerId format"))
		return
	}
	salesPersonID, err := id.Parse(req.SalesPersonID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid salesPersonId format"))
		return
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		h.Error(c, err)
		return
	}

	amount := types.Zero()
	if req.ReservationAmount != nil {
		amount = *req.ReservationAmount
	}

	a, err := h.service.Create(c.Request.Context(), allotment.NewParams{
		VehicleID:         vehicleID,
		CustomerID:        customerID,
		SalesPersonID:     salesPersonID,
		ValidUntil:        req.ValidUntil,
		Type:              allotment.Type(req.Type),
		Priority:          priority,
		ReservationAmount: amount,
		CreatedBy:         h.GetUserID(c),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromAllotment(a))
}

// MarkPaid handles POST /allotments/:id/pay.
func (h *AllotmentHandler) MarkPaid(c *gin.Context) {
	allotmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.MarkPaidRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.MarkReservationPaid(c.Request.Context(), allotmentID, req.PaymentMethod, req.PaymentReference)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAllotment(a))
}

// Extend handles POST /allotments/:id/extend.
func (h *AllotmentHandler) Extend(c *gin.Context) {
	allotmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ExtendRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.Extend(c.Request.Context(), allotmentID, req.ValidUntil)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAllotment(a))
}

// Delete handles DELETE /allotments/:id.
func (h *AllotmentHandler) Delete(c *gin.Context) {
	allotmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), allotmentID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

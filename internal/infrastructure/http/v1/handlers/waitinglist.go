package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"showroom/internal/core/apperror"
	"showroom/internal/core/id"
	"showroom/internal/domain"
	"showroom/internal/domain/waitinglist"
	"showroom/internal/infrastructure/http/v1/dto"
)

// WaitingListHandler handles waiting-list endpoints.
type WaitingListHandler struct {
	*BaseHandler
	service *waitinglist.Service
}

// NewWaitingListHandler creates a new waiting-list handler.
func NewWaitingListHandler(base *BaseHandler, service *waitinglist.Service) *WaitingListHandler {
	return &WaitingListHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /waiting-list.
func (h *WaitingListHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := waitinglist.ListFilter{ListFilter: h.ParseListFilter(c)}

	if v := c.Query("customerId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerID = &parsed
	}
	if v := c.Query("status"); v != "" {
		status := waitinglist.Status(v)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("unknown status").WithDetail("value", v))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority, err := domain.ParsePriority(v)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Priority = &priority
	}
	if v := c.Query("brand"); v != "" {
		filter.Brand = &v
	}
	if v := c.Query("modelName"); v != "" {
		filter.ModelName = &v
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromWaitingListEntry(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /waiting-list/:id.
func (h *WaitingListHandler) Get(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWaitingListEntry(e))
}

// Enroll handles POST /waiting-list.
func (h *WaitingListHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customerId format"))
		return
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		h.Error(c, err)
		return
	}

	criteria := waitinglist.Criteria{
		Brand:          req.Brand,
		ModelName:      req.ModelName,
		VehicleType:    req.VehicleType,
		PreferredColor: req.PreferredColor,
		PreferredYear:  req.PreferredYear,
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		IsFlexible:     req.IsFlexible,
	}
	if req.ModelID != nil {
		parsed, err := id.Parse(*req.ModelID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid modelId format"))
			return
		}
		criteria.ModelID = &parsed
	}

	params := waitinglist.NewParams{
		CustomerID: customerID,
		Criteria:   criteria,
		Priority:   priority,
		CreatedBy:  h.GetUserID(c),
	}
	if req.AssignedTo != nil {
		parsed, err := id.Parse(*req.AssignedTo)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid assignedTo format"))
			return
		}
		params.AssignedTo = &parsed
	}

	e, err := h.service.Enroll(c.Request.Context(), params)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromWaitingListEntry(e))
}

// Notify handles POST /waiting-list/:id/notify.
func (h *WaitingListHandler) Notify(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	e, err := h.service.Notify(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWaitingListEntry(e))
}

// Cancel handles POST /waiting-list/:id/cancel.
func (h *WaitingListHandler) Cancel(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Cancel(c.Request.Context(), entryID, req.Reason, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWaitingListEntry(e))
}

// Reprioritize handles POST /waiting-list/:id/priority.
func (h *WaitingListHandler) Reprioritize(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ReprioritizeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		h.Error(c, err)
		return
	}

	e, err := h.service.Reprioritize(c.Request.Context(), entryID, priority)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWaitingListEntry(e))
}

// RecordContact handles POST /waiting-list/:id/contact.
func (h *WaitingListHandler) RecordContact(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.RecordContactRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.RecordContact(c.Request.Context(), entryID, req.ContactMethod)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWaitingListEntry(e))
}

// Delete handles DELETE /waiting-list/:id.
func (h *WaitingListHandler) Delete(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

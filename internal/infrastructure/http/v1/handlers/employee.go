package handlers

import (
	"github.com/gin-gonic/gin"

	"showroom/internal/domain/catalogs/employee"
	"showroom/internal/infrastructure/http/v1/dto"
)

// EmployeeHandler handles employee endpoints: generic catalog CRUD plus
// role-scoped listing.
type EmployeeHandler struct {
	*CatalogHandler[*employee.Employee, dto.CreateEmployeeRequest, dto.UpdateEmployeeRequest]
	service *employee.Service
}

// NewEmployeeHandler wires the employee service into the generic catalog
// handler.
func NewEmployeeHandler(
	base *BaseHandler,
	service *employee.Service,
) *EmployeeHandler {
	config := CatalogHandlerConfig[
		*employee.Employee,
		dto.CreateEmployeeRequest,
		dto.UpdateEmployeeRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "employee",

		MapCreateDTO: func(req dto.CreateEmployeeRequest) *employee.Employee {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateEmployeeRequest, existing *employee.Employee) *employee.Employee {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *employee.Employee) any {
			return dto.FromEmployee(entity)
		},
	}

	return &EmployeeHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// ListSalesPersons handles GET /employees/sales-persons.
func (h *EmployeeHandler) ListSalesPersons(c *gin.Context) {
	ctx := c.Request.Context()

	filter := h.ParseListFilter(c)

	result, err := h.service.ListSalesPersons(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromEmployee(item)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

package dto

import (
	"time"

	"showroom/internal/core/types"
	"showroom/internal/domain/catalogs/vehicle"
)

// VehicleResponse for API responses.
type VehicleResponse struct {
	CatalogResponse
	Brand       string      `json:"brand"`
	ModelName   string      `json:"modelName"`
	VehicleType string      `json:"vehicleType,omitempty"`
	Color       string      `json:"color,omitempty"`
	Year        int         `json:"year"`
	VIN         string      `json:"vin,omitempty"`
	Price       types.Money `json:"price"`
	Status      string      `json:"status"`
	ArrivalDate *time.Time  `json:"arrivalDate,omitempty"`
}

// FromVehicle creates VehicleResponse from a Vehicle entity.
func FromVehicle(v *vehicle.Vehicle) VehicleResponse {
	return VehicleResponse{
		CatalogResponse: FromCatalog(v.Catalog),
		Brand:           v.Brand,
		ModelName:       v.ModelName,
		VehicleType:     v.VehicleType,
		Color:           v.Color,
		Year:            v.Year,
		VIN:             v.VIN,
		Price:           v.Price,
		Status:          string(v.Status),
		ArrivalDate:     v.ArrivalDate,
	}
}

// CreateVehicleRequest for creating vehicles.
type CreateVehicleRequest struct {
	Code        string      `json:"code"`
	Name        string      `json:"name" binding:"required"`
	Brand       string      `json:"brand" binding:"required"`
	ModelName   string      `json:"modelName" binding:"required"`
	VehicleType string      `json:"vehicleType"`
	Color       string      `json:"color"`
	Year        int         `json:"year" binding:"required"`
	VIN         string      `json:"vin"`
	Price       types.Money `json:"price"`
	ArrivalDate *time.Time  `json:"arrivalDate"`
}

// ToEntity converts the request into a new Vehicle.
func (r CreateVehicleRequest) ToEntity() *vehicle.Vehicle {
	v := vehicle.NewVehicle(r.Code, r.Name, r.Brand, r.ModelName, r.Year, r.Price)
	v.VehicleType = r.VehicleType
	v.Color = r.Color
	v.VIN = r.VIN
	v.ArrivalDate = r.ArrivalDate
	return v
}

// UpdateVehicleRequest for updating vehicles.
type UpdateVehicleRequest struct {
	Name        *string      `json:"name"`
	Brand       *string      `json:"brand"`
	ModelName   *string      `json:"modelName"`
	VehicleType *string      `json:"vehicleType"`
	Color       *string      `json:"color"`
	Year        *int         `json:"year"`
	VIN         *string      `json:"vin"`
	Price       *types.Money `json:"price"`
	ArrivalDate *time.Time   `json:"arrivalDate"`
	Version     int          `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing Vehicle.
func (r UpdateVehicleRequest) ApplyTo(v *vehicle.Vehicle) {
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.Brand != nil {
		v.Brand = *r.Brand
	}
	if r.ModelName != nil {
		v.ModelName = *r.ModelName
	}
	if r.VehicleType != nil {
		v.VehicleType = *r.VehicleType
	}
	if r.Color != nil {
		v.Color = *r.Color
	}
	if r.Year != nil {
		v.Year = *r.Year
	}
	if r.VIN != nil {
		v.VIN = *r.VIN
	}
	if r.Price != nil {
		v.Price = *r.Price
	}
	if r.ArrivalDate != nil {
		v.ArrivalDate = r.ArrivalDate
	}
	v.Version = r.Version
}

// SetVehicleStatusRequest changes the vehicle's inventory state.
type SetVehicleStatusRequest struct {
	Status string `json:"status" binding:"required"`

	// Offer the vehicle to the waiting list when it becomes available.
	OfferToWaitingList bool `json:"offerToWaitingList"`

	// SalesPersonID handles a resulting allotment when the matched
	// waiting-list entry has no assigned sales person.
	SalesPersonID string `json:"salesPersonId"`
}

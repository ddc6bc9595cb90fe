// Package vehicle provides the Vehicle catalog: showroom inventory units.
package vehicle

import (
	"context"
	"time"

	"showroom/internal/core/apperror"
	"showroom/internal/core/entity"
	"showroom/internal/core/types"
	"showroom/internal/domain/waitinglist"
)

// Status is the inventory state of a vehicle.
type Status string

const (
	StatusOrdered   Status = "ordered"
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
	StatusInService Status = "in_service"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOrdered, StatusAvailable, StatusReserved, StatusSold, StatusInService:
		return true
	}
	return false
}

// Vehicle represents a physical vehicle in the showroom inventory.
// Name is the display name (e.g. "Toyota Corolla 1.8 Hybrid").
type Vehicle struct {
	entity.Catalog

	Brand       string `db:"brand" json:"brand"`
	ModelName   string `db:"model_name" json:"modelName"`
	VehicleType string `db:"vehicle_type" json:"vehicleType"`
	Color       string `db:"color" json:"color"`
	Year        int    `db:"year" json:"year"`

	VIN string `db:"vin" json:"vin,omitempty"`

	Price  types.Money `db:"price" json:"price"`
	Status Status      `db:"status" json:"status"`

	ArrivalDate *time.Time `db:"arrival_date" json:"arrivalDate,omitempty"`
}

// NewVehicle creates a new Vehicle with required fields.
func NewVehicle(code, name, brand, modelName string, year int, price types.Money) *Vehicle {
	return &Vehicle{
		Catalog:   entity.NewCatalog(code, name),
		Brand:     brand,
		ModelName: modelName,
		Year:      year,
		Price:     price,
		Status:    StatusOrdered,
	}
}

// Offer converts the vehicle's attributes into a waiting-list offer.
func (v *Vehicle) Offer() waitinglist.VehicleOffer {
	return waitinglist.VehicleOffer{
		VehicleID:   v.ID,
		Brand:       v.Brand,
		Model:       v.ModelName,
		VehicleType: v.VehicleType,
		Color:       v.Color,
		Year:        v.Year,
		Price:       v.Price,
	}
}

// Validate implements entity.Validatable interface.
func (v *Vehicle) Validate(ctx context.Context) error {
	if err := v.Catalog.Validate(ctx); err != nil {
		return err
	}
	if v.Brand == "" {
		return apperror.NewValidation("brand is required").
			WithDetail("field", "brand")
	}
	if v.ModelName == "" {
		return apperror.NewValidation("model name is required").
			WithDetail("field", "modelName")
	}
	if v.Year < 1900 {
		return apperror.NewValidation("year is out of range").
			WithDetail("field", "year").
			WithDetail("value", v.Year)
	}
	if v.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("field", "price")
	}
	if !v.Status.Valid() {
		return apperror.NewValidation("unknown status").
			WithDetail("field", "status").
			WithDetail("value", string(v.Status))
	}
	return nil
}

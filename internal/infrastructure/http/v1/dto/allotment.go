package dto

import (
	"time"

	"showroom/internal/core/types"
	"showroom/internal/domain/allotment"
)

// AllotmentResponse for API responses.
type AllotmentResponse struct {
	DocumentResponse
	VehicleID     string `json:"vehicleId"`
	CustomerID    string `json:"customerId"`
	SalesPersonID string `json:"salesPersonId"`

	ValidUntil time.Time `json:"validUntil"`
	Status     string    `json:"status"`
	Type       string    `json:"allotmentType"`
	Priority   string    `json:"priority"`

	ReservationAmount types.Money `json:"reservationAmount"`
	ReservationPaid   bool        `json:"reservationPaid"`
	PaymentMethod     string      `json:"paymentMethod,omitempty"`
	PaymentReference  string      `json:"paymentReference,omitempty"`

	ConvertedToOrder bool       `json:"convertedToOrder"`
	OrderID          string     `json:"orderId,omitempty"`
	ConversionDate   *time.Time `json:"conversionDate,omitempty"`

	CancellationReason string     `json:"cancellationReason,omitempty"`
	CancelledBy        string     `json:"cancelledBy,omitempty"`
	CancelledDate      *time.Time `json:"cancelledDate,omitempty"`
}

// FromAllotment creates AllotmentResponse from an Allotment.
func FromAllotment(a *allotment.Allotment) AllotmentResponse {
	return AllotmentResponse{
		DocumentResponse:   FromDocument(a.Document),
		VehicleID:          a.VehicleID.String(),
		CustomerID:         a.CustomerID.String(),
		SalesPersonID:      a.SalesPersonID.String(),
		ValidUntil:         a.ValidUntil,
		Status:             string(a.Status),
		Type:               string(a.Type),
		Priority:           a.Priority.String(),
		ReservationAmount:  a.ReservationAmount,
		ReservationPaid:    a.ReservationPaid,
		PaymentMethod:      a.PaymentMethod,
		PaymentReference:   a.PaymentReference,
		ConvertedToOrder:   a.ConvertedToOrder,
		OrderID:            a.OrderID,
		ConversionDate:     a.ConversionDate,
		CancellationReason: a.CancellationReason,
		CancelledBy:        a.CancelledBy,
		CancelledDate:      a.CancelledDate,
	}
}

// CreateAllotmentRequest for creating allotments.
type CreateAllotmentRequest struct {
	VehicleID         string       `json:"vehicleId" binding:"required"`
	CustomerID        string       `json:"customerId" binding:"required"`
	SalesPersonID     string       `json:"salesPersonId" binding:"required"`
	ValidUntil        time.Time    `json:"validUntil" binding:"required"`
	Type              string       `json:"allotmentType" binding:"required"`
	Priority          string       `json:"priority" binding:"required"`
	ReservationAmount *types.Money `json:"reservationAmount"`
}

// MarkPaidRequest records a reservation payment.
type MarkPaidRequest struct {
	PaymentMethod    string `json:"paymentMethod" binding:"required"`
	PaymentReference string `json:"paymentReference"`
}

// ConvertToOrderRequest finalizes an allotment into a sales order.
type ConvertToOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CancelRequest releases a claim with a reason.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ExtendRequest moves the validity window.
type ExtendRequest struct {
	ValidUntil time.Time `json:"validUntil" binding:"required"`
}

// Package allotment provides the Allotment document: a time-bounded claim
// by one customer on one vehicle, held by one sales representative.
package allotment

import (
	"context"
	"time"

	"showroom/internal/core/apperror"
	"showroom/internal/core/entity"
	"showroom/internal/core/id"
	"showroom/internal/core/types"
	"showroom/internal/domain"
)

// Status is the allotment lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusConverted Status = "converted"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusConverted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusConverted || s == StatusCancelled
}

// Type classifies how the claim was placed.
type Type string

const (
	TypeReservation Type = "reservation"
	TypeHold        Type = "hold"
	TypePriority    Type = "priority"
)

// Valid reports whether t is a known allotment type.
func (t Type) Valid() bool {
	switch t {
	case TypeReservation, TypeHold, TypePriority:
		return true
	}
	return false
}

// Allotment is a time-bounded reservation of a specific vehicle for a
// specific customer. Number is the human-readable allotment number,
// Date is the allotment date.
type Allotment struct {
	entity.Document

	VehicleID     id.ID `db:"vehicle_id" json:"vehicleId"`
	CustomerID    id.ID `db:"customer_id" json:"customerId"`
	SalesPersonID id.ID `db:"sales_person_id" json:"salesPersonId"`

	ValidUntil time.Time       `db:"valid_until" json:"validUntil"`
	Status     Status          `db:"status" json:"status"`
	Type       Type            `db:"allotment_type" json:"allotmentType"`
	Priority   domain.Priority `db:"priority" json:"priority"`

	// Reservation payment tracking
	ReservationAmount types.Money `db:"reservation_amount" json:"reservationAmount"`
	ReservationPaid   bool        `db:"reservation_paid" json:"reservationPaid"`
	PaymentMethod     string      `db:"payment_method" json:"paymentMethod,omitempty"`
	PaymentReference  string      `db:"payment_reference" json:"paymentReference,omitempty"`

	// Conversion to sales order
	ConvertedToOrder bool       `db:"converted_to_order" json:"convertedToOrder"`
	OrderID          string     `db:"order_id" json:"orderId,omitempty"`
	ConversionDate   *time.Time `db:"conversion_date" json:"conversionDate,omitempty"`

	// Cancellation
	CancellationReason string     `db:"cancellation_reason" json:"cancellationReason,omitempty"`
	CancelledBy        string     `db:"cancelled_by" json:"cancelledBy,omitempty"`
	CancelledDate      *time.Time `db:"cancelled_date" json:"cancelledDate,omitempty"`
}

// NewParams carries the inputs for creating an allotment.
type NewParams struct {
	VehicleID         id.ID
	CustomerID        id.ID
	SalesPersonID     id.ID
	ValidUntil        time.Time
	Type              Type
	Priority          domain.Priority
	ReservationAmount types.Money
	CreatedBy         string
}

// New creates an allotment in state Active dated now.
// Fails with a validation error if ValidUntil is not strictly in the future.
func New(p NewParams, now time.Time) (*Allotment, error) {
	if !p.ValidUntil.After(now) {
		return nil, apperror.NewValidation("validUntil must be after the allotment date").
			WithDetail("field", "validUntil").
			WithDetail("validUntil", p.ValidUntil)
	}
	if !p.Type.Valid() {
		return nil, apperror.NewValidation("unknown allotment type").
			WithDetail("field", "allotmentType").
			WithDetail("value", string(p.Type))
	}
	if !p.Priority.Valid() {
		return nil, apperror.NewValidation("unknown priority").
			WithDetail("field", "priority")
	}
	if p.ReservationAmount.IsNegative() {
		return nil, apperror.NewValidation("reservation amount must not be negative").
			WithDetail("field", "reservationAmount")
	}

	a := &Allotment{
		Document:          entity.NewDocument(now),
		VehicleID:         p.VehicleID,
		CustomerID:        p.CustomerID,
		SalesPersonID:     p.SalesPersonID,
		ValidUntil:        p.ValidUntil,
		Status:            StatusActive,
		Type:              p.Type,
		Priority:          p.Priority,
		ReservationAmount: p.ReservationAmount,
	}
	a.CreatedBy = p.CreatedBy
	a.UpdatedBy = p.CreatedBy

	if err := a.Validate(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}

// --- Derived predicates ---

// IsExpired reports whether the validity window has passed.
func (a *Allotment) IsExpired(now time.Time) bool {
	return a.ValidUntil.Before(now)
}

// IsActive reports whether the allotment currently holds a claim:
// status Active and not past its validity window.
func (a *Allotment) IsActive(now time.Time) bool {
	return a.Status == StatusActive && !a.IsExpired(now)
}

// CanBeConverted reports whether ConvertToOrder is permitted.
func (a *Allotment) CanBeConverted(now time.Time) bool {
	return a.Status == StatusActive && !a.IsExpired(now) && !a.ConvertedToOrder
}

// CanBeCancelled reports whether Cancel is permitted.
func (a *Allotment) CanBeCancelled() bool {
	return a.Status == StatusActive && !a.ConvertedToOrder
}

// CanBeExtended reports whether Extend is permitted.
func (a *Allotment) CanBeExtended() bool {
	return a.Status == StatusActive && !a.ConvertedToOrder
}

// --- Transitions ---
// All transitions mutate the receiver and are side-effect free with respect
// to persistence; the caller saves the result.

// MarkReservationPaid records the reservation payment.
// Requires status Active.
func (a *Allotment) MarkReservationPaid(method, reference string) error {
	if a.Status != StatusActive {
		return apperror.NewInvalidState("reservation payment can only be recorded on an active allotment").
			WithDetail("status", string(a.Status))
	}
	if method == "" {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "paymentMethod")
	}
	a.ReservationPaid = true
	a.PaymentMethod = method
	a.PaymentReference = reference
	return nil
}

// ConvertToOrder finalizes the claim into a sales order.
func (a *Allotment) ConvertToOrder(orderID string, now time.Time) error {
	if orderID == "" {
		return apperror.NewValidation("order id is required").
			WithDetail("field", "orderId")
	}
	if !a.CanBeConverted(now) {
		return apperror.NewInvalidState("allotment cannot be converted to an order").
			WithDetail("status", string(a.Status)).
			WithDetail("expired", a.IsExpired(now)).
			WithDetail("convertedToOrder", a.ConvertedToOrder)
	}
	a.Status = StatusConverted
	a.ConvertedToOrder = true
	a.OrderID = orderID
	conversionDate := now
	a.ConversionDate = &conversionDate
	return nil
}

// Cancel releases the claim with a reason.
func (a *Allotment) Cancel(reason, cancelledBy string, now time.Time) error {
	if reason == "" {
		return apperror.NewValidation("cancellation reason is required").
			WithDetail("field", "cancellationReason")
	}
	if cancelledBy == "" {
		return apperror.NewValidation("cancelledBy is required").
			WithDetail("field", "cancelledBy")
	}
	if !a.CanBeCancelled() {
		return apperror.NewInvalidState("allotment cannot be cancelled").
			WithDetail("status", string(a.Status)).
			WithDetail("convertedToOrder", a.ConvertedToOrder)
	}
	a.Status = StatusCancelled
	a.CancellationReason = reason
	a.CancelledBy = cancelledBy
	cancelledDate := now
	a.CancelledDate = &cancelledDate
	return nil
}

// Extend moves the validity window further into the future.
func (a *Allotment) Extend(newValidUntil time.Time) error {
	if !a.CanBeExtended() {
		return apperror.NewInvalidState("allotment cannot be extended").
			WithDetail("status", string(a.Status)).
			WithDetail("convertedToOrder", a.ConvertedToOrder)
	}
	if !newValidUntil.After(a.ValidUntil) {
		return apperror.NewValidation("new validity date must be after the current one").
			WithDetail("field", "validUntil").
			WithDetail("current", a.ValidUntil).
			WithDetail("requested", newValidUntil)
	}
	a.ValidUntil = newValidUntil
	return nil
}

// Expire marks an overdue allotment Expired. Idempotent: expiring an
// already-expired allotment is a no-op. Returns true if the status changed.
func (a *Allotment) Expire(now time.Time) (bool, error) {
	if a.Status == StatusExpired {
		return false, nil
	}
	if a.Status != StatusActive {
		return false, apperror.NewInvalidState("only active allotments can expire").
			WithDetail("status", string(a.Status))
	}
	if !a.IsExpired(now) {
		return false, nil
	}
	a.Status = StatusExpired
	return true, nil
}

// Validate implements entity.Validatable.
func (a *Allotment) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(a.VehicleID) {
		return apperror.NewValidation("vehicle is required").
			WithDetail("field", "vehicleId")
	}
	if id.IsNil(a.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if id.IsNil(a.SalesPersonID) {
		return apperror.NewValidation("sales person is required").
			WithDetail("field", "salesPersonId")
	}
	if !a.Status.Valid() {
		return apperror.NewValidation("unknown status").
			WithDetail("field", "status").
			WithDetail("value", string(a.Status))
	}
	if !a.Type.Valid() {
		return apperror.NewValidation("unknown allotment type").
			WithDetail("field", "allotmentType")
	}
	if !a.Priority.Valid() {
		return apperror.NewValidation("unknown priority").
			WithDetail("field", "priority")
	}
	if a.ReservationAmount.IsNegative() {
		return apperror.NewValidation("reservation amount must not be negative").
			WithDetail("field", "reservationAmount")
	}
	if !a.ValidUntil.After(a.Date) {
		return apperror.NewValidation("validUntil must be after the allotment date").
			WithDetail("field", "validUntil")
	}
	// Converted state requires full conversion data, and vice versa.
	converted := a.Status == StatusConverted
	if converted != (a.ConvertedToOrder && a.OrderID != "" && a.ConversionDate != nil) {
		return apperror.NewInvalidState("conversion fields are inconsistent with status").
			WithDetail("status", string(a.Status)).
			WithDetail("convertedToOrder", a.ConvertedToOrder)
	}
	if a.Status == StatusCancelled && (a.CancellationReason == "" || a.CancelledBy == "") {
		return apperror.NewInvalidState("cancelled allotment must carry a reason and actor").
			WithDetail("status", string(a.Status))
	}
	return nil
}

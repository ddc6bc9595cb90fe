package dto

// OfferVehicleRequest offers an available vehicle to the waiting list.
type OfferVehicleRequest struct {
	VehicleID string `json:"vehicleId" binding:"required"`

	// SalesPersonID handles the created allotment when the matched entry
	// has no assigned sales person.
	SalesPersonID string `json:"salesPersonId"`
}

// OfferVehicleResponse reports what the offer did. Both fields empty
// means the offer was a no-op.
type OfferVehicleResponse struct {
	Allotment *AllotmentResponse   `json:"allotment,omitempty"`
	Notified  *WaitingListResponse `json:"notified,omitempty"`
}

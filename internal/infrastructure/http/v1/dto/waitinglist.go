package dto

import (
	"time"

	"showroom/internal/core/types"
	"showroom/internal/domain/waitinglist"
)

// WaitingListResponse for API responses.
type WaitingListResponse struct {
	DocumentResponse
	CustomerID string `json:"customerId"`

	ModelID        *string      `json:"modelId,omitempty"`
	Brand          string       `json:"brand,omitempty"`
	ModelName      string       `json:"modelName,omitempty"`
	VehicleType    string       `json:"vehicleType,omitempty"`
	PreferredColor string       `json:"preferredColor,omitempty"`
	PreferredYear  *int         `json:"preferredYear,omitempty"`
	MinPrice       *types.Money `json:"minPrice,omitempty"`
	MaxPrice       *types.Money `json:"maxPrice,omitempty"`
	IsFlexible     bool         `json:"isFlexible"`

	Priority string `json:"priority"`
	Position int    `json:"position"`
	Status   string `json:"status"`

	ConvertedToAllotment bool    `json:"convertedToAllotment"`
	AllotmentID          *string `json:"allotmentId,omitempty"`
	AssignedTo           *string `json:"assignedTo,omitempty"`

	LastContactDate  *time.Time `json:"lastContactDate,omitempty"`
	NextContactDate  *time.Time `json:"nextContactDate,omitempty"`
	ContactMethod    string     `json:"contactMethod,omitempty"`
	ContactFrequency int        `json:"contactFrequency"`

	CancellationReason string `json:"cancellationReason,omitempty"`
	CancelledBy        string `json:"cancelledBy,omitempty"`
}

// FromWaitingListEntry creates WaitingListResponse from an Entry.
func FromWaitingListEntry(e *waitinglist.Entry) WaitingListResponse {
	resp := WaitingListResponse{
		DocumentResponse:     FromDocument(e.Document),
		CustomerID:           e.CustomerID.String(),
		Brand:                e.Brand,
		ModelName:            e.ModelName,
		VehicleType:          e.VehicleType,
		PreferredColor:       e.PreferredColor,
		PreferredYear:        e.PreferredYear,
		MinPrice:             e.MinPrice,
		MaxPrice:             e.MaxPrice,
		IsFlexible:           e.IsFlexible,
		Priority:             e.Priority.String(),
		Position:             e.Position,
		Status:               string(e.Status),
		ConvertedToAllotment: e.ConvertedToAllotment,
		LastContactDate:      e.LastContactDate,
		NextContactDate:      e.NextContactDate,
		ContactMethod:        e.ContactMethod,
		ContactFrequency:     e.ContactFrequency,
		CancellationReason:   e.CancellationReason,
		CancelledBy:          e.CancelledBy,
	}
	if e.ModelID != nil {
		s := e.ModelID.String()
		resp.ModelID = &s
	}
	if e.AllotmentID != nil {
		s := e.AllotmentID.String()
		resp.AllotmentID = &s
	}
	if e.AssignedTo != nil {
		s := e.AssignedTo.String()
		resp.AssignedTo = &s
	}
	return resp
}

// EnrollRequest adds a customer to the waiting list.
type EnrollRequest struct {
	CustomerID string `json:"customerId" binding:"required"`

	ModelID        *string      `json:"modelId"`
	Brand          string       `json:"brand"`
	ModelName      string       `json:"modelName"`
	VehicleType    string       `json:"vehicleType"`
	PreferredColor string       `json:"preferredColor"`
	PreferredYear  *int         `json:"preferredYear"`
	MinPrice       *types.Money `json:"minPrice"`
	MaxPrice       *types.Money `json:"maxPrice"`
	IsFlexible     bool         `json:"isFlexible"`

	Priority   string  `json:"priority" binding:"required"`
	AssignedTo *string `json:"assignedTo"`
}

// ReprioritizeRequest moves an entry to a new priority tier.
type ReprioritizeRequest struct {
	Priority string `json:"priority" binding:"required"`
}

// RecordContactRequest stamps a completed customer contact.
type RecordContactRequest struct {
	ContactMethod string `json:"contactMethod" binding:"required"`
}

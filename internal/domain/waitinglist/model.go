// Package waitinglist provides the WaitingList document: a customer's
// standing request for a vehicle matching given criteria, ranked for
// first-come service within priority tiers.
package waitinglist

import (
	"context"
	"time"

	"showroom/internal/core/apperror"
	"showroom/internal/core/entity"
	"showroom/internal/core/id"
	"showroom/internal/core/types"
	"showroom/internal/domain"
)

// Status is the waiting-list entry lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusNotified  Status = "notified"
	StatusConverted Status = "converted"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusNotified, StatusConverted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// VehicleOffer carries the attributes of a concrete vehicle offered
// against the waiting list.
type VehicleOffer struct {
	VehicleID   id.ID       `json:"vehicleId"`
	Brand       string      `json:"brand"`
	Model       string      `json:"model"`
	VehicleType string      `json:"vehicleType"`
	Color       string      `json:"color"`
	Year        int         `json:"year"`
	Price       types.Money `json:"price"`
}

// Entry is a waiting-list entry. Number is the human-readable waiting-list
// number, Date is the entry date used for FIFO tie-breaking.
type Entry struct {
	entity.Document

	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Criteria. An unset field is a wildcard.
	ModelID       *id.ID `db:"model_id" json:"modelId,omitempty"`
	Brand         string `db:"brand" json:"brand,omitempty"`
	ModelName     string `db:"model_name" json:"modelName,omitempty"`
	VehicleType   string `db:"vehicle_type" json:"vehicleType,omitempty"`
	PreferredColor string `db:"preferred_color" json:"preferredColor,omitempty"`
	PreferredYear *int   `db:"preferred_year" json:"preferredYear,omitempty"`

	MinPrice *types.Money `db:"min_price" json:"minPrice,omitempty"`
	MaxPrice *types.Money `db:"max_price" json:"maxPrice,omitempty"`

	// IsFlexible relaxes color/year matching, never price or brand/model.
	IsFlexible bool `db:"is_flexible" json:"isFlexible"`

	Priority domain.Priority `db:"priority" json:"priority"`

	// Position is a rank within the priority tier, unique among active
	// entries of the tier. It is not a dense index: conversions and
	// cancellations leave gaps.
	Position int `db:"tier_position" json:"position"`

	Status Status `db:"status" json:"status"`

	// Conversion to allotment
	ConvertedToAllotment bool   `db:"converted_to_allotment" json:"convertedToAllotment"`
	AllotmentID          *id.ID `db:"allotment_id" json:"allotmentId,omitempty"`

	AssignedTo *id.ID `db:"assigned_to" json:"assignedTo,omitempty"`

	// Contact scheduling
	LastContactDate  *time.Time `db:"last_contact_date" json:"lastContactDate,omitempty"`
	NextContactDate  *time.Time `db:"next_contact_date" json:"nextContactDate,omitempty"`
	ContactMethod    string     `db:"contact_method" json:"contactMethod,omitempty"`
	ContactFrequency int        `db:"contact_frequency" json:"contactFrequency"`

	// Cancellation
	CancellationReason string `db:"cancellation_reason" json:"cancellationReason,omitempty"`
	CancelledBy        string `db:"cancelled_by" json:"cancelledBy,omitempty"`
}

// Criteria carries the vehicle-matching inputs for enrollment.
type Criteria struct {
	ModelID        *id.ID
	Brand          string
	ModelName      string
	VehicleType    string
	PreferredColor string
	PreferredYear  *int
	MinPrice       *types.Money
	MaxPrice       *types.Money
	IsFlexible     bool
}

// NewParams carries the inputs for creating a waiting-list entry.
// Position is assigned by the service (tier max + 1).
type NewParams struct {
	CustomerID id.ID
	Criteria   Criteria
	Priority   domain.Priority
	AssignedTo *id.ID
	CreatedBy  string
}

// New creates an entry in state Active dated now.
func New(p NewParams, now time.Time) (*Entry, error) {
	if !p.Priority.Valid() {
		return nil, apperror.NewValidation("unknown priority").
			WithDetail("field", "priority")
	}
	if p.Criteria.MinPrice != nil && p.Criteria.MinPrice.IsNegative() {
		return nil, apperror.NewValidation("minPrice must not be negative").
			WithDetail("field", "minPrice")
	}
	if p.Criteria.MinPrice != nil && p.Criteria.MaxPrice != nil &&
		p.Criteria.MaxPrice.LessThan(*p.Criteria.MinPrice) {
		return nil, apperror.NewValidation("maxPrice must not be below minPrice").
			WithDetail("field", "maxPrice")
	}

	e := &Entry{
		Document:       entity.NewDocument(now),
		CustomerID:     p.CustomerID,
		ModelID:        p.Criteria.ModelID,
		Brand:          p.Criteria.Brand,
		ModelName:      p.Criteria.ModelName,
		VehicleType:    p.Criteria.VehicleType,
		PreferredColor: p.Criteria.PreferredColor,
		PreferredYear:  p.Criteria.PreferredYear,
		MinPrice:       p.Criteria.MinPrice,
		MaxPrice:       p.Criteria.MaxPrice,
		IsFlexible:     p.Criteria.IsFlexible,
		Priority:       p.Priority,
		Status:         StatusActive,
		AssignedTo:     p.AssignedTo,
	}
	e.CreatedBy = p.CreatedBy
	e.UpdatedBy = p.CreatedBy

	if err := e.Validate(context.Background()); err != nil {
		return nil, err
	}
	return e, nil
}

// --- Eligibility ---

// EligibleFor reports whether the entry's criteria are satisfied by the
// offer. Each absent constraint is a wildcard; flexibility loosens only
// color and year, never price or brand/model.
func (e *Entry) EligibleFor(offer VehicleOffer) bool {
	if e.Status != StatusActive {
		return false
	}
	if e.Brand != "" && e.Brand != offer.Brand {
		return false
	}
	if e.ModelName != "" && e.ModelName != offer.Model {
		return false
	}
	if e.VehicleType != "" && e.VehicleType != offer.VehicleType {
		return false
	}
	if !e.IsFlexible {
		if e.PreferredColor != "" && e.PreferredColor != offer.Color {
			return false
		}
		if e.PreferredYear != nil && *e.PreferredYear != offer.Year {
			return false
		}
	}
	if e.MinPrice != nil && offer.Price.LessThan(*e.MinPrice) {
		return false
	}
	if e.MaxPrice != nil && offer.Price.GreaterThan(*e.MaxPrice) {
		return false
	}
	return true
}

// FindBestMatch selects the eligible entry served first: highest priority,
// then lowest position, then earliest entry date. Deterministic for a given
// entry set and offer. Returns nil when nothing matches.
func FindBestMatch(entries []*Entry, offer VehicleOffer) *Entry {
	var best *Entry
	for _, e := range entries {
		if !e.EligibleFor(offer) {
			continue
		}
		if best == nil || servedBefore(e, best) {
			best = e
		}
	}
	return best
}

// servedBefore reports whether a is served before b in the queue order.
func servedBefore(a, b *Entry) bool {
	if a.Priority != b.Priority {
		return a.Priority.Before(b.Priority)
	}
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return a.Date.Before(b.Date)
}

// --- Predicates ---

// CanBeConverted reports whether ConvertToAllotment is permitted.
// A notified entry can still convert: notification precedes hard
// allocation under the acknowledge-first policy.
func (e *Entry) CanBeConverted() bool {
	return (e.Status == StatusActive || e.Status == StatusNotified) && !e.ConvertedToAllotment
}

// CanBeCancelled reports whether Cancel is permitted.
func (e *Entry) CanBeCancelled() bool {
	return (e.Status == StatusActive || e.Status == StatusNotified) && !e.ConvertedToAllotment
}

// --- Transitions ---

// Notify records that the customer was contacted about a candidate vehicle.
func (e *Entry) Notify(now time.Time) error {
	if e.Status != StatusActive {
		return apperror.NewInvalidState("only active waiting-list entries can be notified").
			WithDetail("status", string(e.Status))
	}
	e.Status = StatusNotified
	lastContact := now
	e.LastContactDate = &lastContact
	return nil
}

// ConvertToAllotment records that an allotment was created for this entry.
func (e *Entry) ConvertToAllotment(allotmentID id.ID, now time.Time) error {
	if id.IsNil(allotmentID) {
		return apperror.NewValidation("allotment id is required").
			WithDetail("field", "allotmentId")
	}
	if !e.CanBeConverted() {
		return apperror.NewInvalidState("waiting-list entry cannot be converted").
			WithDetail("status", string(e.Status)).
			WithDetail("convertedToAllotment", e.ConvertedToAllotment)
	}
	e.Status = StatusConverted
	e.ConvertedToAllotment = true
	aid := allotmentID
	e.AllotmentID = &aid
	return nil
}

// Cancel withdraws the entry from the waiting list.
func (e *Entry) Cancel(reason, cancelledBy string) error {
	if reason == "" {
		return apperror.NewValidation("cancellation reason is required").
			WithDetail("field", "cancellationReason")
	}
	if !e.CanBeCancelled() {
		return apperror.NewInvalidState("waiting-list entry cannot be cancelled").
			WithDetail("status", string(e.Status))
	}
	e.Status = StatusCancelled
	e.CancellationReason = reason
	e.CancelledBy = cancelledBy
	return nil
}

// Expire marks a stale entry Expired (policy-driven, e.g. no response
// within the configured contact cycles). Idempotent.
func (e *Entry) Expire() (bool, error) {
	if e.Status == StatusExpired {
		return false, nil
	}
	if e.Status != StatusActive && e.Status != StatusNotified {
		return false, apperror.NewInvalidState("only active or notified entries can expire").
			WithDetail("status", string(e.Status))
	}
	e.Status = StatusExpired
	return true, nil
}

// RecordContact stamps a completed contact and schedules the next one.
func (e *Entry) RecordContact(method string, now time.Time) error {
	if e.Status != StatusActive && e.Status != StatusNotified {
		return apperror.NewInvalidState("contact can only be recorded on an open entry").
			WithDetail("status", string(e.Status))
	}
	lastContact := now
	e.LastContactDate = &lastContact
	if method != "" {
		e.ContactMethod = method
	}
	if e.ContactFrequency > 0 {
		next := now.AddDate(0, 0, e.ContactFrequency)
		e.NextContactDate = &next
	}
	return nil
}

// MoveToTier moves the entry to a new priority tier at the given tail
// position. The old tier keeps its gap; position is a rank, not a dense
// index.
func (e *Entry) MoveToTier(newPriority domain.Priority, tailPosition int) error {
	if !newPriority.Valid() {
		return apperror.NewValidation("unknown priority").
			WithDetail("field", "priority")
	}
	if e.Status != StatusActive && e.Status != StatusNotified {
		return apperror.NewInvalidState("only open entries can be reprioritized").
			WithDetail("status", string(e.Status))
	}
	e.Priority = newPriority
	e.Position = tailPosition
	return nil
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(e.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if !e.Priority.Valid() {
		return apperror.NewValidation("unknown priority").
			WithDetail("field", "priority")
	}
	if !e.Status.Valid() {
		return apperror.NewValidation("unknown status").
			WithDetail("field", "status")
	}
	if e.Position < 0 {
		return apperror.NewValidation("position must not be negative").
			WithDetail("field", "position")
	}
	if e.MinPrice != nil && e.MaxPrice != nil && e.MaxPrice.LessThan(*e.MinPrice) {
		return apperror.NewValidation("maxPrice must not be below minPrice").
			WithDetail("field", "maxPrice")
	}
	converted := e.Status == StatusConverted
	if converted != (e.ConvertedToAllotment && e.AllotmentID != nil) {
		return apperror.NewInvalidState("conversion fields are inconsistent with status").
			WithDetail("status", string(e.Status))
	}
	return nil
}

package entity

import (
	"context"
	"time"

	"showroom/internal/core/apperror"
)

// Document is the base type for business records with a lifecycle.
// Examples: Allotment, WaitingList entry.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID and the given business date.
func NewDocument(date time.Time) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         date,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

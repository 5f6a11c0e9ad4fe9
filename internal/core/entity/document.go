package entity

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// Document is the base type for business transactions.
// Inventory documents are immutable once written: corrections are made by
// posting a compensating document, never by editing history.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within company+type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// CompanyID scopes the document to its owning company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// BranchID is the originating branch (optional)
	BranchID id.ID `db:"branch_id" json:"branchId,omitempty"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(companyID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		CompanyID:    companyID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}

package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/mysociety/internal/common"
)

// ReadOnly lists the fields a patch may name but never change. Decoding a
// request body into a patch fills them when the client sent them, which
// lets Check reject the request instead of silently ignoring it.
type ReadOnly struct {
	ID         *string    `json:"id,omitempty"`
	CreatedBy  *string    `json:"created_by,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	ModifiedBy *string    `json:"modified_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	Deleted    *bool      `json:"deleted,omitempty"`
}

func (r ReadOnly) Check() error {
	fields := []struct {
		name string
		set  bool
	}{
		{"id", r.ID != nil},
		{"created_by", r.CreatedBy != nil},
		{"created_at", r.CreatedAt != nil},
		{"modified_by", r.ModifiedBy != nil},
		{"modified_at", r.ModifiedAt != nil},
		{"deleted", r.Deleted != nil},
	}
	for _, f := range fields {
		if f.set {
			return fmt.Errorf("%w: %s", common.ErrImmutableField, f.name)
		}
	}
	return nil
}

func checkCommon(amount *decimal.Decimal, date *Date) error {
	if amount != nil {
		if err := checkAmount(*amount); err != nil {
			return err
		}
	}
	if date != nil && date.IsZero() {
		return invalidField("date", "must not be empty")
	}
	return nil
}

func applyCommon(e *Entry, amount *decimal.Decimal, date *Date) {
	set(&e.Amount, amount)
	set(&e.Date, date)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func invalidField(field, reason string) error {
	return common.Invalid(field, reason)
}
